// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository persists local accounts.
type UserRepository interface {
	// Create persists a new user. Username and email uniqueness is enforced
	// atomically: a taken value yields domainerrors.ErrUsernameAlreadyInUse or
	// domainerrors.ErrEmailAlreadyInUse. The first user ever created becomes
	// an administrator and the flag is set on user.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsername retrieves a single user by their username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateDisplayName changes the display name and appends it to the history.
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string, now time.Time) error

	// HardDelete removes the user and its credentials.
	HardDelete(ctx context.Context, id uuid.UUID) error
}
