package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"
)

// ErrRemoteTokenNotFound is returned when no token is stored for a remote account.
var ErrRemoteTokenNotFound = errors.New("remote token not found")

// RemoteTokenRepository keeps the credentials used to access remote data on
// behalf of linked accounts. A remote account has at most one session key: a
// touch replaces any previous key of the account, and a key observed for a new
// account is moved to it.
type RemoteTokenRepository interface {
	// TouchSession records an active remote session (Hammerfest or Dinoparc).
	TouchSession(ctx context.Context, session *entity.RemoteSession, now time.Time) error

	// RevokeSession forgets a session key.
	RevokeSession(ctx context.Context, service entity.RemoteService, server, key string) error

	// FindSession returns the last known session of a remote account.
	FindSession(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteSession, error)

	// TouchTwinoidOauth records the OAuth token of a Twinoid account.
	TouchTwinoidOauth(ctx context.Context, token *entity.TwinoidOauthToken, now time.Time) error

	// FindTwinoidOauth returns the OAuth token of a Twinoid account.
	FindTwinoidOauth(ctx context.Context, twinoidUserID string) (*entity.TwinoidOauthToken, error)
}
