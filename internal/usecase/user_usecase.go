package usecase

import (
	"context"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// UserUsecase exposes users and lets them manage their remote links. Unlike
// LinkUsecase it enforces the permissions of the AuthContext.
type UserUsecase interface {
	// GetUserByID returns nil without error when the user is unknown.
	GetUserByID(ctx context.Context, acx entity.AuthContext, userID uuid.UUID) (*entity.UserWithLinks, error)

	LinkToDinoparcWithCredentials(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, credentials entity.RemoteCredentials) (*entity.VersionedLink, error)
	LinkToDinoparcWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, dparcUserID string) (*entity.VersionedLink, error)

	LinkToHammerfestWithCredentials(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, credentials entity.RemoteCredentials) (*entity.VersionedLink, error)
	LinkToHammerfestWithSessionKey(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, sessionKey string) (*entity.VersionedLink, error)
	LinkToHammerfestWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, hfUserID string) (*entity.VersionedLink, error)

	LinkToTwinoidWithOauth(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, token TwinoidOauthInput) (*entity.VersionedLink, error)
	LinkToTwinoidWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, tidUserID string) (*entity.VersionedLink, error)

	UnlinkFromDinoparc(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, dparcUserID string) (*entity.VersionedLink, error)
	UnlinkFromHammerfest(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, hfUserID string) (*entity.VersionedLink, error)
	UnlinkFromTwinoid(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, tidUserID string) (*entity.VersionedLink, error)
}

// TwinoidOauthInput is an access token granted by Twinoid to this application.
type TwinoidOauthInput struct {
	AccessToken  string
	RefreshToken *string
	ExpiresIn    int64 // Seconds.
}
