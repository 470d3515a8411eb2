package model

import (
	"time"

	"github.com/google/uuid"
)

// OauthClientModel mirrors the 'oauth_clients' table.
type OauthClientModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Key         *string   `gorm:"type:varchar(64);unique"`
	DisplayName string    `gorm:"type:varchar(64);not null"`
	AppURI      string    `gorm:"type:varchar(512);not null"`
	CallbackURI string    `gorm:"type:varchar(512);not null"`
	SecretHash  string    `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (OauthClientModel) TableName() string {
	return "oauth_clients"
}

// OauthAccessTokenModel mirrors the 'oauth_access_tokens' table.
type OauthAccessTokenModel struct {
	Key            string    `gorm:"type:varchar(64);primaryKey"`
	ClientID       uuid.UUID `gorm:"type:uuid;not null"`
	UserID         uuid.UUID `gorm:"type:uuid;not null"`
	CTime          time.Time `gorm:"column:ctime;not null"`
	ATime          time.Time `gorm:"column:atime;not null"`
	ExpirationTime time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (OauthAccessTokenModel) TableName() string {
	return "oauth_access_tokens"
}
