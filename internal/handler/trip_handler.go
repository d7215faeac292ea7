package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"
	"tripscout/internal/nudge"
	"tripscout/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TripHandler struct {
	trips  *repository.TripRepository
	events *repository.EventRepository
	engine *nudge.Engine
}

func NewTripHandler(trips *repository.TripRepository, events *repository.EventRepository, engine *nudge.Engine) *TripHandler {
	return &TripHandler{trips: trips, events: events, engine: engine}
}

type createTripRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Region        string   `json:"region"`
	Country       string   `json:"country"`
	DatesStart    *string  `json:"dates_start"` // RFC 3339 date, e.g. 2026-09-12
	DatesEnd      *string  `json:"dates_end"`
	TargetSpecies []string `json:"target_species"`
	TripType      string   `json:"trip_type"`
}

func (h *TripHandler) Create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	start, err := parseDate(req.DatesStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dates_start"})
		return
	}
	end, err := parseDate(req.DatesEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dates_end"})
		return
	}
	trip := &models.Trip{
		Slug:          slugify(req.Title),
		Title:         req.Title,
		Status:        domain.TripStatusDraft,
		Description:   req.Description,
		Region:        req.Region,
		Country:       req.Country,
		DatesStart:    start,
		DatesEnd:      end,
		TargetSpecies: strings.Join(req.TargetSpecies, ", "),
		TripType:      req.TripType,
	}
	if err := h.trips.Create(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *TripHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	trip, err := h.trips.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.trips.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": list})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus transitions a trip. Activation fires a trip_activated nudge
// event so confirmed participants hear about it.
func (h *TripHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validTripStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	trip, err := h.trips.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	if err := h.trips.UpdateStatus(uint(id), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if req.Status == domain.TripStatusActive && trip.Status != domain.TripStatusActive {
		h.engine.TriggerEvent(uint(id), "trip_activated", "Your trip \""+trip.Title+"\" is now active!")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *TripHandler) Events(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("trip_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.events.ListByTrip(uint(id), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

func validTripStatus(s string) bool {
	switch s {
	case domain.TripStatusDraft, domain.TripStatusActive, domain.TripStatusCompleted,
		domain.TripStatusCancelled, domain.TripStatusArchived:
		return true
	}
	return false
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// slugify builds a URL slug from the title plus a short random suffix so
// titles need not be unique.
func slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "trip"
	}
	return slug + "-" + uuid.NewString()[:8]
}
