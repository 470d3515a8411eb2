package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrLinkNotFound is returned when no current link matches.
var ErrLinkNotFound = errors.New("link not found")

// LinkRepository stores link records. Writers must hold the locks of the keys
// they touch for the duration of their transaction.
type LinkRepository interface {
	// LockRemote serializes writers of one remote account until the
	// surrounding transaction ends.
	LockRemote(ctx context.Context, key entity.RemoteAccountKey) error

	// LockUserServer serializes writers of the links between one user and one
	// service server until the surrounding transaction ends.
	LockUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) error

	// FindCurrentByRemote returns the current record of a remote account.
	FindCurrentByRemote(ctx context.Context, key entity.RemoteAccountKey) (*entity.LinkRecord, error)

	// FindCurrentByUserServer returns the current record between a user and a service server.
	FindCurrentByUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) (*entity.LinkRecord, error)

	// ListClosedByRemote returns the closed records of a remote account ordered by link time.
	ListClosedByRemote(ctx context.Context, key entity.RemoteAccountKey) ([]*entity.LinkRecord, error)

	// ListCurrentByUser returns every current record of a user.
	ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]*entity.LinkRecord, error)

	// Create inserts a new current record.
	Create(ctx context.Context, record *entity.LinkRecord) error

	// Close marks a current record as unlinked.
	Close(ctx context.Context, id uuid.UUID, unlinkedAt time.Time, unlinkedBy uuid.UUID) error
}
