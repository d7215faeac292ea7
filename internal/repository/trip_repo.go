package repository

import (
	"tripscout/internal/domain"
	"tripscout/internal/models"

	"gorm.io/gorm"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(t *models.Trip) error {
	return r.db.Create(t).Error
}

func (r *TripRepository) GetByID(id uint) (*models.Trip, error) {
	var t models.Trip
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) GetBySlug(slug string) (*models.Trip, error) {
	var t models.Trip
	if err := r.db.Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) List(limit, offset int) ([]models.Trip, error) {
	var list []models.Trip
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListActiveWithDates returns the trips the nudge scanner cares about:
// status=active and a known start date.
func (r *TripRepository) ListActiveWithDates() ([]models.Trip, error) {
	var list []models.Trip
	err := r.db.Where("status = ? AND dates_start IS NOT NULL", domain.TripStatusActive).Find(&list).Error
	return list, err
}

func (r *TripRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Trip{}).Where("id = ?", id).Update("status", status).Error
}
