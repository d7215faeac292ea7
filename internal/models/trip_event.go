package models

import "time"

// TripEvent is the append-only audit stream of everything that happens on a
// trip (activation, invites, nudges, vendor replies).
type TripEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TripID    uint      `gorm:"not null;index" json:"trip_id"`
	EventType string    `gorm:"size:100;not null;index" json:"event_type"`
	Actor     string    `gorm:"size:20;not null;default:'system'" json:"actor"` // user | system | agent | vendor
	ActorID   *uint     `json:"actor_id"`
	Payload   string    `gorm:"type:text" json:"payload"` // JSON
	CreatedAt time.Time `json:"created_at"`

	Trip Trip `gorm:"foreignKey:TripID" json:"-"`
}

func (TripEvent) TableName() string { return "trip_events" }
