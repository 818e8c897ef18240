package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tradepost/internal/models"
)

// Gorm implements Store on top of a GORM session.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

// NewGorm wraps a GORM handle in the Store contract.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) EligibleDeletionRequests(ctx context.Context, cutoff time.Time) ([]models.DeletionRequest, error) {
	var requests []models.DeletionRequest
	err := s.db.WithContext(ctx).
		Where("status = ? AND requested_at <= ?", models.DeletionStatusPending, cutoff).
		Order("requested_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Gorm) CompleteDeletionRequest(ctx context.Context, id uuid.UUID, now time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.DeletionRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.DeletionStatusCompleted,
			"completed_at": now,
		}).Error
}

func (s *Gorm) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Gorm) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *Gorm) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (s *Gorm) DeletePushTokens(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PushToken{}).Error
}

func (s *Gorm) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

func (s *Gorm) DeleteConsentRecords(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ConsentRecord{}).Error
}

func (s *Gorm) DeleteNotifications(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}

func (s *Gorm) DetachAuditLogs(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.AuditLogEntry{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}

func (s *Gorm) ClearExpiredAuditIdentity(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.AuditLogEntry{}).
		Where("created_at < ? AND user_id IS NOT NULL", cutoff).
		Updates(map[string]any{
			"user_id":    nil,
			"ip_address": nil,
			"user_agent": nil,
		})
	return res.RowsAffected, res.Error
}

func (s *Gorm) AuditEntriesWithMetadata(ctx context.Context, cutoff time.Time) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := s.db.WithContext(ctx).
		Where("created_at < ? AND metadata IS NOT NULL", cutoff).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Gorm) SaveAuditMetadata(ctx context.Context, id uuid.UUID, meta datatypes.JSON) error {
	return s.db.WithContext(ctx).
		Model(&models.AuditLogEntry{}).
		Where("id = ?", id).
		Update("metadata", meta).Error
}
