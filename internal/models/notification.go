package models

import "time"

// Notification is one row of the delivery ledger: a single notification
// decision (sent, failed, or skipped) for one recipient on one channel.
// Rows are never deleted; the ledger doubles as the dedup source of truth.
//
// DedupKey is set only on the in_app row that claims a (trip, task, trigger,
// recipient, UTC-day) slot. The unique index makes that insert an atomic
// claim, so two overlapping cycles cannot both send for the same slot.
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TripID        uint       `gorm:"not null;index" json:"trip_id"`
	TaskID        *uint      `gorm:"index" json:"task_id"`
	ParticipantID uint       `gorm:"not null;index" json:"participant_id"`
	TriggerType   string     `gorm:"size:20;not null;index" json:"trigger_type"` // deadline | countdown | overdue | event
	Channel       string     `gorm:"size:10;not null" json:"channel"`            // email | in_app
	Status        string     `gorm:"size:10;not null;index;default:'pending'" json:"status"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	SentAt        *time.Time `json:"sent_at"`
	Subject       string     `gorm:"size:300" json:"subject"`
	Body          string     `gorm:"type:text" json:"body"`
	Error         string     `gorm:"size:1024" json:"error,omitempty"`
	Metadata      string     `gorm:"type:text" json:"metadata"` // JSON
	DedupKey      *string    `gorm:"uniqueIndex;size:128" json:"-"`
	ReadAt        *time.Time `json:"read_at"`
	CreatedAt     time.Time  `json:"created_at"`

	Trip        Trip        `gorm:"foreignKey:TripID" json:"-"`
	Participant Participant `gorm:"foreignKey:ParticipantID" json:"-"`
}

func (Notification) TableName() string { return "trip_notifications" }
