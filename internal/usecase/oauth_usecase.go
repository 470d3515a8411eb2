package usecase

import (
	"context"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateOauthClientInput defines the data required to register an OAuth client.
type CreateOauthClientInput struct {
	Key         *string // Optional alias ending with entity.OauthClientKeySuffix.
	DisplayName string
	AppURI      string
	CallbackURI string
	Secret      []byte
}

// OauthUsecase manages the applications allowed to act for users.
type OauthUsecase interface {
	// CreateClient is reserved to the system and administrators.
	CreateClient(ctx context.Context, acx entity.AuthContext, input CreateOauthClientInput) (*entity.OauthClient, error)

	// GetClientByIDOrKey accepts a client id or a "<name>@clients" key.
	GetClientByIDOrKey(ctx context.Context, acx entity.AuthContext, ref string) (*entity.OauthClient, error)

	VerifyClientSecret(ctx context.Context, acx entity.AuthContext, clientID uuid.UUID, secret []byte) (bool, error)

	// IssueAccessToken is reserved to the system.
	IssueAccessToken(ctx context.Context, acx entity.AuthContext, clientID, userID uuid.UUID) (*entity.OauthAccessToken, error)

	// GetAccessTokenByKey touches the token. Missing and expired tokens are NotFound.
	GetAccessTokenByKey(ctx context.Context, acx entity.AuthContext, key string) (*entity.OauthAccessToken, error)
}
