package service

import (
	"context"

	"etwin/internal/domain/entity"
)

// Remote clients report a rejection of the presented credentials with the
// service specific Invalid*Credentials error, and any transport or protocol
// failure with domainerrors.ErrRemoteUnavailable.

// HammerfestClient talks to the Hammerfest servers.
type HammerfestClient interface {
	// CreateSession logs in with a username and password.
	CreateSession(ctx context.Context, credentials entity.RemoteCredentials) (*entity.RemoteSession, error)

	// TestSession returns the session behind a key, or nil if it is not authenticated.
	TestSession(ctx context.Context, server, key string) (*entity.RemoteSession, error)

	// GetProfileByID returns the public profile of a user, or nil if unknown.
	GetProfileByID(ctx context.Context, server, userID string) (*entity.RemoteProfile, error)
}

// DinoparcClient talks to the Dinoparc servers.
type DinoparcClient interface {
	// CreateSession logs in with a username and password.
	CreateSession(ctx context.Context, credentials entity.RemoteCredentials) (*entity.RemoteSession, error)

	// TestSession returns the session behind a key, or nil if it is not authenticated.
	TestSession(ctx context.Context, server, key string) (*entity.RemoteSession, error)

	// GetProfileByID returns the public profile of a user, or nil if unknown.
	GetProfileByID(ctx context.Context, server, userID string) (*entity.RemoteProfile, error)
}

// TwinoidClient resolves Twinoid OAuth access tokens.
type TwinoidClient interface {
	// GetMe returns the account owning the access token.
	GetMe(ctx context.Context, accessToken string) (*entity.RemoteUser, error)
}
