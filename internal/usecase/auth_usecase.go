// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterOrLoginWithEmailInput defines the data required to send a registration email.
type RegisterOrLoginWithEmailInput struct {
	Email  string
	Locale string // Defaults to entity.DefaultLocale.
}

// RegisterWithVerifiedEmailInput defines the data required to finish an email registration.
type RegisterWithVerifiedEmailInput struct {
	EmailToken  string
	DisplayName string
	Password    []byte
}

// RegisterWithUsernameInput defines the data required to register with a username.
type RegisterWithUsernameInput struct {
	Username    string
	DisplayName string
	Password    []byte
}

// LoginInput defines the data required for a user to log in. Login is an
// email address or a username.
type LoginInput struct {
	Login    string
	Password []byte
}

// AuthUsecase authenticates callers and creates local accounts. Every entry
// point reserved to anonymous callers fails with Forbidden for any other
// AuthContext.
type AuthUsecase interface {
	RegisterOrLoginWithEmail(ctx context.Context, acx entity.AuthContext, input RegisterOrLoginWithEmailInput) error
	RegisterWithVerifiedEmail(ctx context.Context, acx entity.AuthContext, input RegisterWithVerifiedEmailInput) (*entity.UserAndSession, error)
	RegisterWithUsername(ctx context.Context, acx entity.AuthContext, input RegisterWithUsernameInput) (*entity.UserAndSession, error)
	LoginWithCredentials(ctx context.Context, acx entity.AuthContext, input LoginInput) (*entity.UserAndSession, error)

	RegisterOrLoginWithDinoparc(ctx context.Context, acx entity.AuthContext, credentials entity.RemoteCredentials) (*entity.UserAndSession, error)
	RegisterOrLoginWithHammerfest(ctx context.Context, acx entity.AuthContext, credentials entity.RemoteCredentials) (*entity.UserAndSession, error)
	RegisterOrLoginWithTwinoidOauth(ctx context.Context, acx entity.AuthContext, accessToken string) (*entity.UserAndSession, error)

	// AuthenticateSession returns nil without error when the session is unknown.
	AuthenticateSession(ctx context.Context, acx entity.AuthContext, sessionID uuid.UUID) (*entity.UserAndSession, error)
	AuthenticateAccessToken(ctx context.Context, tokenKey string) (entity.AuthContext, error)
	AuthenticateCredentials(ctx context.Context, credentials entity.Credentials) (entity.AuthContext, error)
	HasPassword(ctx context.Context, userID uuid.UUID) (bool, error)

	// Logout deletes a session.
	Logout(ctx context.Context, sessionID uuid.UUID) error
}
