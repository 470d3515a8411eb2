// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLocale is used for outgoing emails when the caller does not pick one.
const DefaultLocale = "en-US"

// User is a local Eternal-Twin account. A user owns at least one of a
// username, an email or an external link.
type User struct {
	ID              uuid.UUID // Immutable identifier.
	DisplayName     string    // Current display name; older values are kept by the store.
	Username        *string   // Unique login name, nil for accounts created through a remote login.
	Email           *string   // Unique verified email, nil when never verified.
	IsAdministrator bool      // Grants access to ref-based link management.
	CreatedAt       time.Time // Timestamp of when this user account was created.
	UpdatedAt       time.Time // Timestamp of the last display name change.
}

// Short returns the public reference to the user.
func (u *User) Short() ShortUser {
	return ShortUser{ID: u.ID, DisplayName: u.DisplayName}
}

// ShortUser is the public reference to a user, as embedded in sessions and links.
type ShortUser struct {
	ID          uuid.UUID
	DisplayName string
}

// UserWithLinks is a user enriched with its remote links and, for the user
// themself or an administrator, whether a password is set.
type UserWithLinks struct {
	User        *User
	Links       *VersionedLinks
	HasPassword *bool
	// Complete is false when Username and Email were stripped for privacy.
	Complete bool
}

// EmailVerification records a completed email ownership challenge.
type EmailVerification struct {
	UserID         uuid.UUID
	Email          string
	CTime          time.Time // Issuance time of the token.
	ValidationTime time.Time
}

// EmailContent is a rendered email.
type EmailContent struct {
	Title    string
	TextBody string
	HTMLBody string
}
