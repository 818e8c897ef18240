package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogEntry captures notable account and administrative events.
// Entries are append-only; the retention sweeper clears identifying fields
// in place once an entry ages past the retention window but never deletes
// the row.
type AuditLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	Action    string         `gorm:"type:text;not null"`
	IPAddress *string        `gorm:"type:text"`
	UserAgent *string        `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:UserID;references:ID"`
}
