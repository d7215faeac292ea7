package models

import (
	"time"

	"gorm.io/gorm"
)

type Trip struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Slug          string         `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Status        string         `gorm:"size:20;not null;index;default:'draft'" json:"status"` // draft | active | completed | cancelled | archived
	Description   string         `gorm:"type:text" json:"description"`
	Region        string         `gorm:"size:255" json:"region"`
	Country       string         `gorm:"size:100" json:"country"`
	DatesStart    *time.Time     `json:"dates_start"`
	DatesEnd      *time.Time     `json:"dates_end"`
	TargetSpecies string         `gorm:"size:512" json:"target_species"` // comma-separated, e.g. "tarpon, snook"
	TripType      string         `gorm:"size:50" json:"trip_type"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Tasks        []Task        `gorm:"foreignKey:TripID" json:"tasks,omitempty"`
	Participants []Participant `gorm:"foreignKey:TripID" json:"participants,omitempty"`
}

func (Trip) TableName() string { return "trips" }

// FormatDates renders the trip date range for message context, e.g.
// "June 3, 2026 – June 9, 2026". Returns "Dates TBD" when no start date.
func (t *Trip) FormatDates() string {
	if t.DatesStart == nil {
		return "Dates TBD"
	}
	const layout = "January 2, 2006"
	if t.DatesEnd == nil {
		return t.DatesStart.Format(layout)
	}
	return t.DatesStart.Format(layout) + " – " + t.DatesEnd.Format(layout)
}
