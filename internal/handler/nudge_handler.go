package handler

import (
	"net/http"

	"tripscout/internal/nudge"

	"github.com/gin-gonic/gin"
)

type NudgeHandler struct {
	engine *nudge.Engine
}

func NewNudgeHandler(engine *nudge.Engine) *NudgeHandler {
	return &NudgeHandler{engine: engine}
}

// Run triggers one cycle on demand and returns the aggregate result. Same
// code path as the scheduled tick.
func (h *NudgeHandler) Run(c *gin.Context) {
	result := h.engine.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

type triggerEventRequest struct {
	TripID    uint   `json:"trip_id" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
	EventText string `json:"event_text"`
}

// TriggerEvent queues a one-off event nudge. Fire-and-forget.
func (h *NudgeHandler) TriggerEvent(c *gin.Context) {
	var req triggerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trip_id and event_type required"})
		return
	}
	h.engine.TriggerEvent(req.TripID, req.EventType, req.EventText)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NudgeHandler) Settings(c *gin.Context) {
	s := h.engine.Settings()
	c.JSON(http.StatusOK, gin.H{
		"enabled":           s.Enabled,
		"deadline_days":     s.DeadlineDays,
		"countdown_days":    s.CountdownDays,
		"overdue_days":      s.OverdueDays,
		"quiet_hours_start": s.QuietHoursStart,
		"quiet_hours_end":   s.QuietHoursEnd,
		"max_per_day":       s.MaxPerDay,
	})
}
