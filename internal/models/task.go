package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TripID         uint           `gorm:"not null;index" json:"trip_id"`
	Type           string         `gorm:"size:50;not null" json:"type"` // booking | payment | document | gear | travel | decision | communication | custom
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	AssignedTo     *uint          `gorm:"index" json:"assigned_to"` // participant id
	Deadline       *time.Time     `json:"deadline"`
	SortOrder      int            `gorm:"default:0" json:"sort_order"`
	Status         string         `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	AutomationMode string         `gorm:"size:20;default:'remind'" json:"automation_mode"`
	CompletedAt    *time.Time     `json:"completed_at"`
	LastReminderAt *time.Time     `json:"last_reminder_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Trip Trip `gorm:"foreignKey:TripID" json:"-"`
}

func (Task) TableName() string { return "trip_tasks" }

// Open reports whether the task still needs attention (not completed/skipped).
func (t *Task) Open() bool {
	return t.Status != "completed" && t.Status != "skipped"
}
