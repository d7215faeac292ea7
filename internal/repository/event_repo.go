package repository

import (
	"encoding/json"

	"tripscout/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Log appends one event to a trip's audit stream.
func (r *EventRepository) Log(tripID uint, eventType, actor string, actorID *uint, payload map[string]interface{}) error {
	var payloadJSON string
	if payload != nil {
		b, _ := json.Marshal(payload)
		payloadJSON = string(b)
	}
	return r.db.Create(&models.TripEvent{
		TripID:    tripID,
		EventType: eventType,
		Actor:     actor,
		ActorID:   actorID,
		Payload:   payloadJSON,
	}).Error
}

func (r *EventRepository) ListByTrip(tripID uint, limit, offset int) ([]models.TripEvent, error) {
	var list []models.TripEvent
	err := r.db.Where("trip_id = ?", tripID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
