package model

import "time"

// RemoteUserModel mirrors the 'remote_users' table, keyed by (service, server, remote_id).
type RemoteUserModel struct {
	Service   string `gorm:"type:varchar(16);primaryKey"`
	Server    string `gorm:"type:varchar(32);primaryKey"`
	RemoteID  string `gorm:"type:varchar(64);primaryKey"`
	Username  string `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RemoteUserModel) TableName() string {
	return "remote_users"
}

// RemoteSessionModel mirrors the 'remote_sessions' table. A session key is
// unique per server and an account has at most one key.
type RemoteSessionModel struct {
	Service    string    `gorm:"type:varchar(16);primaryKey"`
	Server     string    `gorm:"type:varchar(32);primaryKey"`
	RemoteID   string    `gorm:"type:varchar(64);primaryKey"`
	SessionKey string    `gorm:"type:varchar(64);not null"`
	CTime      time.Time `gorm:"column:ctime;not null"`
	ATime      time.Time `gorm:"column:atime;not null"`
}

// TableName explicitly sets the table name for GORM.
func (RemoteSessionModel) TableName() string {
	return "remote_sessions"
}

// TwinoidOauthModel mirrors the 'twinoid_oauth_tokens' table.
type TwinoidOauthModel struct {
	TwinoidUserID  string  `gorm:"type:varchar(64);primaryKey"`
	AccessToken    string  `gorm:"type:varchar(255);not null"`
	RefreshToken   *string `gorm:"type:varchar(255)"`
	ExpirationTime time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (TwinoidOauthModel) TableName() string {
	return "twinoid_oauth_tokens"
}
