package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletionRequestStatus enumerates the lifecycle of an account deletion request.
type DeletionRequestStatus string

const (
	DeletionStatusPending   DeletionRequestStatus = "PENDING"
	DeletionStatusCancelled DeletionRequestStatus = "CANCELLED"
	DeletionStatusCompleted DeletionRequestStatus = "COMPLETED"
)

// DeletionRequest records a user's pending request to leave the platform.
// Eligibility for finalization is always derived from RequestedAt plus the
// grace period; it is never stored.
type DeletionRequest struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID            `gorm:"type:uuid;index"`
	RequestedAt time.Time             `gorm:"not null;index"`
	Status      DeletionRequestStatus `gorm:"type:text;not null;default:'PENDING';index"`
	CompletedAt *time.Time

	// ScheduledFor is populated by the request-intake flow but the
	// finalization batch intentionally computes eligibility from
	// RequestedAt instead. See DESIGN.md.
	ScheduledFor *time.Time

	// AnonymizeContributions selects the destruction strategy. Nil is
	// treated as true: keep contributions attributed to a sentinel name.
	AnonymizeContributions *bool `gorm:"default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:UserID;references:ID"`
}
