package handler

import (
	"net/http"
	"strconv"

	"tripscout/internal/domain"
	"tripscout/internal/models"
	"tripscout/internal/repository"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks *repository.TaskRepository
	trips *repository.TripRepository
}

func NewTaskHandler(tasks *repository.TaskRepository, trips *repository.TripRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks, trips: trips}
}

type createTaskRequest struct {
	Type           string  `json:"type" binding:"required"`
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	AssignedTo     *uint   `json:"assigned_to"`
	Deadline       *string `json:"deadline"` // 2006-01-02
	SortOrder      int     `json:"sort_order"`
	AutomationMode string  `json:"automation_mode"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	if _, err := h.trips.GetByID(uint(tripID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type and title required"})
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}
	mode := req.AutomationMode
	if mode == "" {
		mode = domain.AutomationModeRemind
	}
	task := &models.Task{
		TripID:         uint(tripID),
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     req.AssignedTo,
		Deadline:       deadline,
		SortOrder:      req.SortOrder,
		Status:         domain.TaskStatusPending,
		AutomationMode: mode,
	}
	if err := h.tasks.Create(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	list, err := h.tasks.ListByTrip(uint(tripID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if err := h.tasks.UpdateStatus(uint(id), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func validTaskStatus(s string) bool {
	switch s {
	case domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusWaitingResponse,
		domain.TaskStatusCompleted, domain.TaskStatusSkipped, domain.TaskStatusOverdue:
		return true
	}
	return false
}
