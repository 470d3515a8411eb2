package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNoPassword is returned when the user has no password hash.
var ErrNoPassword = errors.New("no password set")

// AuthRepository stores the credentials attached to local accounts.
type AuthRepository interface {
	// SetPasswordHash stores or replaces the password hash of a user.
	SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string, now time.Time) error

	// GetPasswordHash returns ErrNoPassword when the user never set a password.
	GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error)

	// CreateEmailVerification appends an email verification record.
	CreateEmailVerification(ctx context.Context, verification *entity.EmailVerification) error
}
