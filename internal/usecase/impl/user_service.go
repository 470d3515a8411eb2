package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "etwin/internal/delivery/context"
	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/domain/service"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo         repository.UserRepository
	authRepo         repository.AuthRepository
	externalRepo     repository.ExternalAccountRepository
	remoteTokenRepo  repository.RemoteTokenRepository
	links            usecase.LinkUsecase
	hammerfestClient service.HammerfestClient
	dinoparcClient   service.DinoparcClient
	twinoidClient    service.TwinoidClient
	clock            service.Clock
	logger           *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo         repository.UserRepository
	AuthRepo         repository.AuthRepository
	ExternalRepo     repository.ExternalAccountRepository
	RemoteTokenRepo  repository.RemoteTokenRepository
	Links            usecase.LinkUsecase
	HammerfestClient service.HammerfestClient
	DinoparcClient   service.DinoparcClient
	TwinoidClient    service.TwinoidClient
	Clock            service.Clock
	Logger           *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:         params.UserRepo,
		authRepo:         params.AuthRepo,
		externalRepo:     params.ExternalRepo,
		remoteTokenRepo:  params.RemoteTokenRepo,
		links:            params.Links,
		hammerfestClient: params.HammerfestClient,
		dinoparcClient:   params.DinoparcClient,
		twinoidClient:    params.TwinoidClient,
		clock:            params.Clock,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetUserByID returns the user and its links. Private fields are only kept for
// the user themself, administrators and the system.
func (srv *userService) GetUserByID(ctx context.Context, acx entity.AuthContext, userID uuid.UUID) (*entity.UserWithLinks, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	links, err := srv.links.GetVersionedLinks(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user links")
	}

	if !canReadPrivate(acx, userID) {
		public := *user
		public.Username = nil
		public.Email = nil

		return &entity.UserWithLinks{User: &public, Links: links}, nil
	}

	hasPassword := true
	if _, err := srv.authRepo.GetPasswordHash(ctx, userID); err != nil {
		if !errors.Is(err, repository.ErrNoPassword) {
			return nil, errors.Wrap(err, "failed to get password hash")
		}
		hasPassword = false
	}

	return &entity.UserWithLinks{User: user, Links: links, HasPassword: &hasPassword, Complete: true}, nil
}

func canReadPrivate(acx entity.AuthContext, userID uuid.UUID) bool {
	switch acx := acx.(type) {
	case *entity.SystemAuthContext:
		return true
	case *entity.UserAuthContext:
		return acx.User.ID == userID || acx.IsAdministrator
	case *entity.GuestAuthContext, *entity.AccessTokenAuthContext, *entity.OauthClientAuthContext:
		return false
	default:
		return false
	}
}

// linkAccess says who may link a remote account to a user.
type linkAccess int

const (
	accessSelf linkAccess = iota
	accessAdmin
	accessSelfOrAdmin
)

// authorize returns the acting user when the context may manage the links of userID.
func authorize(acx entity.AuthContext, userID uuid.UUID, access linkAccess) (*entity.UserAuthContext, error) {
	switch acx := acx.(type) {
	case *entity.GuestAuthContext:
		return nil, domainerrors.ErrUnauthorized
	case *entity.UserAuthContext:
		self := acx.User.ID == userID
		allowed := false
		switch access {
		case accessSelf:
			allowed = self
		case accessAdmin:
			allowed = acx.IsAdministrator
		case accessSelfOrAdmin:
			allowed = self || acx.IsAdministrator
		}
		if !allowed {
			return nil, domainerrors.ErrForbidden.WithDetails("not allowed to manage the links of " + userID.String())
		}

		return acx, nil
	case *entity.AccessTokenAuthContext, *entity.OauthClientAuthContext, *entity.SystemAuthContext:
		return nil, domainerrors.ErrForbidden.WithDetails("link management requires a user auth context")
	default:
		return nil, domainerrors.ErrAssertion.WithDetails("unexpected auth context")
	}
}

// LinkToDinoparcWithCredentials logs into Dinoparc on behalf of the user and links the account.
func (srv *userService) LinkToDinoparcWithCredentials(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, credentials entity.RemoteCredentials) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelf)
	if err != nil {
		return nil, err
	}

	session, err := srv.dinoparcClient.CreateSession(ctx, credentials)
	if err != nil {
		return nil, errors.Wrap(err, "dinoparc login failed")
	}

	if err := srv.touchRemoteSession(ctx, session); err != nil {
		return nil, err
	}

	return srv.links.LinkToDinoparc(ctx, usecase.LinkOptions{
		UserID:       userID,
		Server:       session.User.Key.Server,
		RemoteUserID: session.User.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToDinoparcWithRef links a known Dinoparc account without its credentials.
func (srv *userService) LinkToDinoparcWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, dparcUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessAdmin)
	if err != nil {
		return nil, err
	}

	profile, err := srv.dinoparcClient.GetProfileByID(ctx, server, dparcUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dinoparc profile")
	}
	if profile == nil {
		return nil, domainerrors.ErrInvalidDinoparcRef.WithDetails(server + "/" + dparcUserID)
	}

	if err := srv.externalRepo.Touch(ctx, profile.User, srv.clock.Now()); err != nil {
		return nil, errors.Wrap(err, "failed to touch dinoparc user")
	}

	return srv.links.LinkToDinoparc(ctx, usecase.LinkOptions{
		UserID:       userID,
		Server:       server,
		RemoteUserID: profile.User.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToHammerfestWithCredentials logs into Hammerfest on behalf of the user and links the account.
func (srv *userService) LinkToHammerfestWithCredentials(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, credentials entity.RemoteCredentials) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelf)
	if err != nil {
		return nil, err
	}

	session, err := srv.hammerfestClient.CreateSession(ctx, credentials)
	if err != nil {
		return nil, errors.Wrap(err, "hammerfest login failed")
	}

	if err := srv.touchRemoteSession(ctx, session); err != nil {
		return nil, err
	}

	return srv.links.LinkToHammerfest(ctx, usecase.LinkOptions{
		UserID:       userID,
		Server:       session.User.Key.Server,
		RemoteUserID: session.User.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToHammerfestWithSessionKey links the account behind an existing Hammerfest session.
func (srv *userService) LinkToHammerfestWithSessionKey(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, sessionKey string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelf)
	if err != nil {
		return nil, err
	}

	session, err := srv.hammerfestClient.TestSession(ctx, server, sessionKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to test hammerfest session")
	}
	if session == nil {
		if err := srv.remoteTokenRepo.RevokeSession(ctx, entity.RemoteServiceHammerfest, server, sessionKey); err != nil {
			srv.log(ctx).Warn("Failed to revoke hammerfest session", slog.String("server", server), slog.Any("error", err))
		}

		return nil, domainerrors.ErrInvalidHammerfestSession.WithDetails(server)
	}

	if err := srv.touchRemoteSession(ctx, session); err != nil {
		return nil, err
	}

	return srv.links.LinkToHammerfest(ctx, usecase.LinkOptions{
		UserID:       userID,
		Server:       server,
		RemoteUserID: session.User.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToHammerfestWithRef links a known Hammerfest account without its credentials.
func (srv *userService) LinkToHammerfestWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, hfUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessAdmin)
	if err != nil {
		return nil, err
	}

	profile, err := srv.hammerfestClient.GetProfileByID(ctx, server, hfUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get hammerfest profile")
	}
	if profile == nil {
		return nil, domainerrors.ErrInvalidHammerfestRef.WithDetails(server + "/" + hfUserID)
	}

	if err := srv.externalRepo.Touch(ctx, profile.User, srv.clock.Now()); err != nil {
		return nil, errors.Wrap(err, "failed to touch hammerfest user")
	}

	return srv.links.LinkToHammerfest(ctx, usecase.LinkOptions{
		UserID:       userID,
		Server:       server,
		RemoteUserID: profile.User.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToTwinoidWithOauth links the Twinoid account owning the access token.
func (srv *userService) LinkToTwinoidWithOauth(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, token usecase.TwinoidOauthInput) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelf)
	if err != nil {
		return nil, err
	}

	remoteUser, err := srv.twinoidClient.GetMe(ctx, token.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "twinoid authentication failed")
	}

	now := srv.clock.Now()
	if err := srv.externalRepo.Touch(ctx, *remoteUser, now); err != nil {
		return nil, errors.Wrap(err, "failed to touch twinoid user")
	}

	oauthToken := &entity.TwinoidOauthToken{
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ExpirationTime: now.Add(time.Duration(token.ExpiresIn) * time.Second),
		TwinoidUserID:  remoteUser.Key.RemoteID,
	}
	if err := srv.remoteTokenRepo.TouchTwinoidOauth(ctx, oauthToken, now); err != nil {
		return nil, errors.Wrap(err, "failed to record twinoid token")
	}

	return srv.links.LinkToTwinoid(ctx, usecase.LinkOptions{
		UserID:       userID,
		RemoteUserID: remoteUser.Key.RemoteID,
		LinkedBy:     actor.User.ID,
	})
}

// LinkToTwinoidWithRef links a Twinoid account already observed by the system.
func (srv *userService) LinkToTwinoidWithRef(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, tidUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessAdmin)
	if err != nil {
		return nil, err
	}

	if _, err := srv.externalRepo.Find(ctx, entity.TwinoidKey(tidUserID)); err != nil {
		if errors.Is(err, repository.ErrRemoteUserNotFound) {
			return nil, domainerrors.ErrInvalidTwinoidRef.WithDetails(tidUserID)
		}

		return nil, errors.Wrap(err, "failed to find twinoid user")
	}

	return srv.links.LinkToTwinoid(ctx, usecase.LinkOptions{
		UserID:       userID,
		RemoteUserID: tidUserID,
		LinkedBy:     actor.User.ID,
	})
}

func (srv *userService) UnlinkFromDinoparc(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, dparcUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelfOrAdmin)
	if err != nil {
		return nil, err
	}

	return srv.links.UnlinkFromDinoparc(ctx, usecase.UnlinkOptions{UserID: userID, Server: server, RemoteUserID: dparcUserID, UnlinkedBy: actor.User.ID})
}

func (srv *userService) UnlinkFromHammerfest(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, server, hfUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelfOrAdmin)
	if err != nil {
		return nil, err
	}

	return srv.links.UnlinkFromHammerfest(ctx, usecase.UnlinkOptions{UserID: userID, Server: server, RemoteUserID: hfUserID, UnlinkedBy: actor.User.ID})
}

func (srv *userService) UnlinkFromTwinoid(ctx context.Context, acx entity.AuthContext, userID uuid.UUID, tidUserID string) (*entity.VersionedLink, error) {
	actor, err := authorize(acx, userID, accessSelfOrAdmin)
	if err != nil {
		return nil, err
	}

	return srv.links.UnlinkFromTwinoid(ctx, usecase.UnlinkOptions{UserID: userID, RemoteUserID: tidUserID, UnlinkedBy: actor.User.ID})
}

// touchRemoteSession records the remote account and the session used to reach
// it. Remote sessions are a cache, so failing to store one is only logged, as
// in the login flows.
func (srv *userService) touchRemoteSession(ctx context.Context, session *entity.RemoteSession) error {
	now := srv.clock.Now()
	if err := srv.externalRepo.Touch(ctx, session.User, now); err != nil {
		return errors.Wrap(err, "failed to touch remote user")
	}
	if err := srv.remoteTokenRepo.TouchSession(ctx, session, now); err != nil {
		srv.log(ctx).Warn("Failed to record remote session", slog.String("key", session.User.Key.String()), slog.Any("error", err))
	}

	return nil
}
