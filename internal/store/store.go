// Package store defines the persistence contract consumed by the lifecycle
// jobs, together with its GORM-backed and in-memory implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tradepost/internal/models"
)

// ErrNotFound is returned when a point read matches no row.
var ErrNotFound = errors.New("store: not found")

// Store is the read/write contract the lifecycle engine requires: filtered
// finds, one set-based update, single-row updates, per-table deletes keyed
// by user, and a cascading delete of the user row. No multi-statement
// transactions are required; every call stands alone.
type Store interface {
	// EligibleDeletionRequests returns PENDING requests whose RequestedAt
	// is at or before cutoff, oldest first.
	EligibleDeletionRequests(ctx context.Context, cutoff time.Time) ([]models.DeletionRequest, error)
	// CompleteDeletionRequest transitions a request to COMPLETED.
	CompleteDeletionRequest(ctx context.Context, id uuid.UUID, now time.Time) error

	// UserByID returns ErrNotFound when the user row no longer exists.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// SaveUser persists the full user row.
	SaveUser(ctx context.Context, u *models.User) error
	// DeleteUser removes the user row; owned rows go with it via cascade.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	DeletePushTokens(ctx context.Context, userID uuid.UUID) error
	DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error
	DeleteConsentRecords(ctx context.Context, userID uuid.UUID) error
	DeleteNotifications(ctx context.Context, userID uuid.UUID) error
	// DetachAuditLogs nulls the user reference on the user's audit entries
	// without deleting them.
	DetachAuditLogs(ctx context.Context, userID uuid.UUID) error

	// ClearExpiredAuditIdentity clears user id, IP address and user agent
	// on all entries older than cutoff that still carry a user reference,
	// in a single set-based update. Returns the number of rows touched.
	ClearExpiredAuditIdentity(ctx context.Context, cutoff time.Time) (int64, error)
	// AuditEntriesWithMetadata returns entries older than cutoff whose
	// metadata bag is non-null.
	AuditEntriesWithMetadata(ctx context.Context, cutoff time.Time) ([]models.AuditLogEntry, error)
	// SaveAuditMetadata writes back a scrubbed metadata bag.
	SaveAuditMetadata(ctx context.Context, id uuid.UUID, meta datatypes.JSON) error
}
