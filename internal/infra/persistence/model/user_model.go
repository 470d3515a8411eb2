package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. Username and email are unique when set.
// It is an exported type so it can be shared by the persistence packages.
type UserModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	DisplayName     string    `gorm:"type:varchar(64);not null"`
	Username        *string   `gorm:"type:varchar(32);unique"`
	Email           *string   `gorm:"type:varchar(255);unique"`
	IsAdministrator bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UserDisplayNameModel mirrors the 'user_display_names' table, the history of display names.
type UserDisplayNameModel struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	DisplayName string    `gorm:"type:varchar(64);not null"`
	Since       time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (UserDisplayNameModel) TableName() string {
	return "user_display_names"
}

// PasswordModel mirrors the 'user_passwords' table.
type PasswordModel struct {
	UserID       uuid.UUID `gorm:"type:uuid;primary_key"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (PasswordModel) TableName() string {
	return "user_passwords"
}

// EmailVerificationModel mirrors the 'email_verifications' table.
type EmailVerificationModel struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Email          string    `gorm:"type:varchar(255);not null"`
	CTime          time.Time `gorm:"column:ctime;not null"`
	ValidationTime time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (EmailVerificationModel) TableName() string {
	return "email_verifications"
}

// SessionModel mirrors the 'sessions' table.
type SessionModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	UserDisplayName string    `gorm:"type:varchar(64);not null"`
	CTime           time.Time `gorm:"column:ctime;not null"`
	ATime           time.Time `gorm:"column:atime;not null"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
