package handler

import (
	"net/http"
	"strconv"

	"tripscout/internal/repository"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo *repository.NotificationRepository
}

func NewNotificationHandler(repo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) ListByTrip(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.repo.ListByTrip(uint(tripID), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) ListByParticipant(c *gin.Context) {
	participantID, err := strconv.ParseUint(c.Query("participantId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participantId required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.repo.ListByParticipant(uint(participantID), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	participantID, err := strconv.ParseUint(c.Query("participantId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participantId required"})
		return
	}
	count, err := h.repo.CountUnread(uint(participantID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type markReadRequest struct {
	NotificationID uint `json:"notification_id" binding:"required"`
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification_id required"})
		return
	}
	if err := h.repo.MarkRead(req.NotificationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type markAllReadRequest struct {
	ParticipantID uint `json:"participant_id" binding:"required"`
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	var req markAllReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participant_id required"})
		return
	}
	marked, err := h.repo.MarkAllRead(req.ParticipantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "marked": marked})
}
