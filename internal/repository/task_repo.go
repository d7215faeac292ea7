package repository

import (
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(t *models.Task) error {
	return r.db.Create(t).Error
}

func (r *TaskRepository) GetByID(id uint) (*models.Task, error) {
	var t models.Task
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByTrip(tripID uint) ([]models.Task, error) {
	var list []models.Task
	err := r.db.Where("trip_id = ?", tripID).Order("sort_order ASC, id ASC").Find(&list).Error
	return list, err
}

// ListOpenByTrip returns tasks still needing attention (not completed/skipped).
func (r *TaskRepository) ListOpenByTrip(tripID uint) ([]models.Task, error) {
	var list []models.Task
	err := r.db.Where("trip_id = ? AND status NOT IN ?", tripID,
		[]string{domain.TaskStatusCompleted, domain.TaskStatusSkipped}).
		Order("sort_order ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *TaskRepository) UpdateStatus(id uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == domain.TaskStatusCompleted {
		updates["completed_at"] = time.Now().UTC()
	}
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
}

// StampReminder records when the nudge engine last reminded about this task.
func (r *TaskRepository) StampReminder(id uint, at time.Time) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Update("last_reminder_at", at).Error
}
