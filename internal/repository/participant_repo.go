package repository

import (
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(p *models.Participant) error {
	return r.db.Create(p).Error
}

func (r *ParticipantRepository) GetByID(id uint) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) GetByInviteToken(token string) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.Where("invite_token = ?", token).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) ListByTrip(tripID uint) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.Where("trip_id = ?", tripID).Order("id ASC").Find(&list).Error
	return list, err
}

// ListConfirmed returns the participants eligible to receive nudges.
func (r *ParticipantRepository) ListConfirmed(tripID uint) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.Where("trip_id = ? AND status = ?", tripID, domain.ParticipantConfirmed).
		Order("id ASC").Find(&list).Error
	return list, err
}

// Confirm flips an invited participant to confirmed and stamps joined_at.
func (r *ParticipantRepository) Confirm(id uint) error {
	now := time.Now().UTC()
	return r.db.Model(&models.Participant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.ParticipantConfirmed, "joined_at": now}).Error
}
