package repository

import (
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert writes a ledger row. When n.DedupKey is set the insert is an atomic
// claim: a concurrent cycle that already claimed the same key loses nothing,
// and Insert reports inserted=false so the caller can skip the pair.
func (r *NotificationRepository) Insert(n *models.Notification) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsDuplicate reports whether a sent/pending record already exists for the
// same (trip, task, trigger, recipient) within the trailing window. Cheap
// pre-filter; the dedup_key unique index is the real arbiter.
func (r *NotificationRepository) IsDuplicate(tripID uint, taskID *uint, triggerType string, participantID uint, since time.Time) (bool, error) {
	q := r.db.Model(&models.Notification{}).
		Where("trip_id = ? AND trigger_type = ? AND participant_id = ?", tripID, triggerType, participantID).
		Where("status IN ?", []string{domain.NotificationSent, domain.NotificationPending}).
		Where("created_at > ?", since)
	if taskID != nil {
		q = q.Where("task_id = ?", *taskID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSentSince counts sent records for a recipient since the given instant
// (start of the current UTC day for the daily cap).
func (r *NotificationRepository) CountSentSince(participantID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("participant_id = ? AND status = ? AND created_at > ?",
			participantID, domain.NotificationSent, since).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkSent(id uint, messageID string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{"status": domain.NotificationSent, "sent_at": now}
	if messageID != "" {
		updates["metadata"] = gorm.Expr(
			"JSON_SET(COALESCE(NULLIF(metadata, ''), '{}'), '$.resend_message_id', ?)", messageID)
	}
	return r.db.Model(&models.Notification{}).Where("id = ?", id).Updates(updates).Error
}

func (r *NotificationRepository) MarkFailed(id uint, errMsg string) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.NotificationFailed, "error": errMsg}).Error
}

func (r *NotificationRepository) MarkSkipped(id uint, reason string) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.NotificationSkipped, "error": reason}).Error
}

func (r *NotificationRepository) ListByTrip(tripID uint, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("trip_id = ?", tripID).Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// ListByParticipant returns sent/pending in_app notifications for a recipient.
func (r *NotificationRepository) ListByParticipant(participantID uint, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("participant_id = ? AND channel = ? AND status IN ?",
		participantID, domain.ChannelInApp,
		[]string{domain.NotificationSent, domain.NotificationPending}).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountUnread(participantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("participant_id = ? AND channel = ? AND status IN ? AND read_at IS NULL",
			participantID, domain.ChannelInApp,
			[]string{domain.NotificationSent, domain.NotificationPending}).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", time.Now().UTC()).Error
}

// MarkAllRead marks every unread in_app notification for a recipient and
// returns how many rows were touched.
func (r *NotificationRepository) MarkAllRead(participantID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("participant_id = ? AND channel = ? AND read_at IS NULL", participantID, domain.ChannelInApp).
		Update("read_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}
