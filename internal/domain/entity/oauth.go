package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OauthClientKeySuffix terminates every OAuth client key, e.g. "eternalfest@clients".
const OauthClientKeySuffix = "@clients"

// OauthClient is an application allowed to request access to user accounts.
type OauthClient struct {
	ID          uuid.UUID
	Key         *string // Human readable alias, always ending with OauthClientKeySuffix.
	DisplayName string
	AppURI      string
	CallbackURI string
	SecretHash  string // Compared through the PasswordHasher.
	CreatedAt   time.Time
}

// Short returns the public reference to the client.
func (c *OauthClient) Short() ShortOauthClient {
	return ShortOauthClient{ID: c.ID, Key: c.Key, DisplayName: c.DisplayName}
}

// ShortOauthClient is the public reference to an OAuth client.
type ShortOauthClient struct {
	ID          uuid.UUID
	Key         *string
	DisplayName string
}

// OauthAccessToken grants a client access to a user account until ExpirationTime.
type OauthAccessToken struct {
	Key            string
	Client         ShortOauthClient
	User           ShortUser
	CTime          time.Time
	ATime          time.Time
	ExpirationTime time.Time
}

// IsExpired reports whether the token can no longer be used at time now.
func (t *OauthAccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpirationTime)
}

// Credentials is a login and secret pair presented by a machine client.
type Credentials struct {
	Login    string
	Password []byte
}

// LoginType classifies the shape of a login value.
type LoginType string

const (
	LoginTypeEmail          LoginType = "Email"
	LoginTypeUsername       LoginType = "Username"
	LoginTypeUUID           LoginType = "Uuid"
	LoginTypeOauthClientKey LoginType = "OauthClientKey"
	LoginTypeUnknown        LoginType = "Unknown"
)

// ParseLogin detects the type of login. UUIDs and client keys are checked
// before emails since client keys contain an "@".
func ParseLogin(login string) LoginType {
	if _, err := uuid.Parse(login); err == nil && len(login) == 36 {
		return LoginTypeUUID
	}
	if strings.HasSuffix(login, OauthClientKeySuffix) && len(login) > len(OauthClientKeySuffix) {
		return LoginTypeOauthClientKey
	}
	if IsEmailAddress(login) {
		return LoginTypeEmail
	}
	if IsUsername(login) {
		return LoginTypeUsername
	}

	return LoginTypeUnknown
}
