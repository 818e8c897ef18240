package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a marketplace member and owns all of their PII fields.
//
// DeletedAt and AnonymizedAt are plain nullable timestamps rather than
// gorm.DeletedAt: the lifecycle engine performs hard deletes, and an
// anonymized user must remain a live, queryable row.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	Name         string    `gorm:"type:text;not null"`
	Bio          *string   `gorm:"type:text"`
	AvatarURL    *string   `gorm:"type:text"`
	PasswordHash string    `gorm:"type:text;not null"`

	ShowEmailOnProfile   bool `gorm:"not null;default:false"`
	IncludeInSearch      bool `gorm:"not null;default:true"`
	ShowActivityPublicly bool `gorm:"not null;default:true"`

	AnonymizedAt *time.Time
	DeletedAt    *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PushTokens     []PushToken     `gorm:"constraint:OnDelete:CASCADE"`
	RefreshTokens  []RefreshToken  `gorm:"constraint:OnDelete:CASCADE"`
	ConsentRecords []ConsentRecord `gorm:"constraint:OnDelete:CASCADE"`
	Notifications  []Notification  `gorm:"constraint:OnDelete:CASCADE"`
	Projects       []Project       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Ideas          []Idea          `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Collaborations []Collaboration `gorm:"constraint:OnDelete:CASCADE"`
	AuditLogs      []AuditLogEntry `gorm:"constraint:OnDelete:SET NULL"`
}
