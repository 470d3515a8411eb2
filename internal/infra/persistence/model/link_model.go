package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkModel mirrors the 'links' table. Partial unique indexes keep a single
// current row per remote account and per (user, service, server).
type LinkModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	Service    string     `gorm:"type:varchar(16);not null"`
	Server     string     `gorm:"type:varchar(32);not null"`
	RemoteID   string     `gorm:"type:varchar(64);not null"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`
	LinkedAt   time.Time  `gorm:"not null"`
	LinkedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	UnlinkedAt *time.Time
	UnlinkedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName explicitly sets the table name for GORM.
func (LinkModel) TableName() string {
	return "links"
}
