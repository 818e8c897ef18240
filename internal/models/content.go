package models

import (
	"time"

	"github.com/google/uuid"
)

// Content rows stay attributed to their owner after anonymization; they are
// only removed, via cascade, when the owning user row is deleted outright.

// Project is a marketplace listing owned by a user.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:text;not null"`
	Summary   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Idea is a proposal posted by a user for collaboration.
type Idea struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:text;not null"`
	Body      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Collaboration links a user to a project they contribute to.
type Collaboration struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:text;not null;default:'contributor'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
