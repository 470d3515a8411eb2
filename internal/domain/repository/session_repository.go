package repository

import (
	"context"
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores local sessions. Expiry is a store policy.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// GetAndTouch advances the access time of a session to now (never backwards)
	// and returns a copy of the updated session.
	GetAndTouch(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
