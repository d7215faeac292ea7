package handler

import (
	"net/http"
	"strconv"
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"
	"tripscout/internal/nudge"
	"tripscout/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParticipantHandler struct {
	participants *repository.ParticipantRepository
	trips        *repository.TripRepository
	engine       *nudge.Engine
}

func NewParticipantHandler(participants *repository.ParticipantRepository, trips *repository.TripRepository, engine *nudge.Engine) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, trips: trips, engine: engine}
}

type addParticipantRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *ParticipantHandler) Add(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	if _, err := h.trips.GetByID(uint(tripID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	role := req.Role
	if role != domain.RoleOrganizer {
		role = domain.RoleParticipant
	}
	now := time.Now().UTC()
	p := &models.Participant{
		TripID:       uint(tripID),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		Status:       domain.ParticipantInvited,
		InviteToken:  uuid.NewString(),
		InviteSentAt: &now,
	}
	if err := h.participants.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ParticipantHandler) List(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	list, err := h.participants.ListByTrip(uint(tripID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list})
}

type confirmRequest struct {
	InviteToken string `json:"invite_token" binding:"required"`
}

// Confirm flips an invited participant to confirmed via their invite token
// and announces the join on the trip's nudge channel.
func (h *ParticipantHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invite_token required"})
		return
	}
	p, err := h.participants.GetByInviteToken(req.InviteToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}
	if p.Status == domain.ParticipantConfirmed {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if err := h.participants.Confirm(p.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.engine.TriggerEvent(p.TripID, "participant_joined", p.Name+" joined the trip")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
