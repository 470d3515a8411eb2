package repository

import (
	"context"
	"errors"
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for OAuth persistence.
var (
	// ErrOauthClientNotFound is returned when a client is not found.
	ErrOauthClientNotFound = errors.New("oauth client not found")
	// ErrOauthClientKeyTaken is returned when creating a client with an existing key.
	ErrOauthClientKeyTaken = errors.New("oauth client key already in use")
	// ErrAccessTokenNotFound is returned when an access token is not found.
	ErrAccessTokenNotFound = errors.New("access token not found")
)

// OauthRepository persists OAuth clients and the access tokens they were granted.
type OauthRepository interface {
	// CreateClient persists a new client.
	CreateClient(ctx context.Context, client *entity.OauthClient) error

	// FindClientByID retrieves a client by id.
	FindClientByID(ctx context.Context, id uuid.UUID) (*entity.OauthClient, error)

	// FindClientByKey retrieves a client by its "@clients" key.
	FindClientByKey(ctx context.Context, key string) (*entity.OauthClient, error)

	// CreateAccessToken persists a new access token.
	CreateAccessToken(ctx context.Context, token *entity.OauthAccessToken) error

	// GetAndTouchAccessToken advances the access time of a token and returns it.
	GetAndTouchAccessToken(ctx context.Context, key string, now time.Time) (*entity.OauthAccessToken, error)
}
