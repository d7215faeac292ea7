package models

import (
	"time"

	"gorm.io/gorm"
)

type Participant struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TripID       uint           `gorm:"not null;index" json:"trip_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        string         `gorm:"size:255" json:"email"` // empty when the participant has no email channel
	Role         string         `gorm:"size:20;not null;default:'participant'" json:"role"`
	Status       string         `gorm:"size:20;not null;index;default:'invited'" json:"status"`
	InviteToken  string         `gorm:"size:64;index" json:"-"`
	InviteSentAt *time.Time     `json:"invite_sent_at"`
	JoinedAt     *time.Time     `json:"joined_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Trip Trip `gorm:"foreignKey:TripID" json:"-"`
}

func (Participant) TableName() string { return "trip_participants" }
