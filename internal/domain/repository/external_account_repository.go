package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"
)

// ErrRemoteUserNotFound is returned when a remote account was never observed.
var ErrRemoteUserNotFound = errors.New("remote user not found")

// ExternalAccountRepository caches the remote accounts observed by the system.
// Records are keyed by (service, server, remote id) and never deleted.
type ExternalAccountRepository interface {
	// Touch inserts the account or overwrites its name, in a single statement.
	Touch(ctx context.Context, user entity.RemoteUser, now time.Time) error

	// Find returns the last observed state of an account.
	Find(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteUser, error)
}
