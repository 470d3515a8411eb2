package impl

import (
	"context"
	"log/slog"
	"time"

	"etwin/config"
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

const defaultAccessTokenTTL = time.Hour

// oauthService implements the OauthUsecase interface.
type oauthService struct {
	oauthRepo      repository.OauthRepository
	userRepo       repository.UserRepository
	hasher         service.PasswordHasher
	uuidGen        service.UUIDGenerator
	clock          service.Clock
	accessTokenTTL time.Duration
	logger         *slog.Logger
}

// OauthServiceParams holds dependencies for OauthService, injected by Fx.
type OauthServiceParams struct {
	fx.In

	OauthRepo repository.OauthRepository
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	UUIDGen   service.UUIDGenerator
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewOauthService is the constructor for oauthService.
func NewOauthService(params OauthServiceParams) usecase.OauthUsecase {
	accessTokenTTL := defaultAccessTokenTTL
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.AccessTokenTTL > 0 {
		accessTokenTTL = params.Config.Auth.AccessTokenTTL
	}

	return &oauthService{
		oauthRepo:      params.OauthRepo,
		userRepo:       params.UserRepo,
		hasher:         params.Hasher,
		uuidGen:        params.UUIDGen,
		clock:          params.Clock,
		accessTokenTTL: accessTokenTTL,
		logger:         params.Logger,
	}
}

func (srv *oauthService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func requireSystem(acx entity.AuthContext, action string) error {
	if _, ok := acx.(*entity.SystemAuthContext); ok {
		return nil
	}

	return domainerrors.ErrForbidden.WithDetails(action + " is reserved to the system")
}

// CreateClient registers a new OAuth client with a hashed secret.
func (srv *oauthService) CreateClient(ctx context.Context, acx entity.AuthContext, input usecase.CreateOauthClientInput) (*entity.OauthClient, error) {
	switch acx := acx.(type) {
	case *entity.SystemAuthContext:
	case *entity.UserAuthContext:
		if !acx.IsAdministrator {
			return nil, domainerrors.ErrForbidden.WithDetails("only administrators can create oauth clients")
		}
	case *entity.GuestAuthContext:
		return nil, domainerrors.ErrUnauthorized
	default:
		return nil, domainerrors.ErrForbidden.WithDetails("only administrators can create oauth clients")
	}

	if input.Key != nil && entity.ParseLogin(*input.Key) != entity.LoginTypeOauthClientKey {
		return nil, domainerrors.ErrInvalidInput.WithDetails("client key must end with " + entity.OauthClientKeySuffix)
	}

	secretHash, err := srv.hasher.Hash(input.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash client secret")
	}

	client := &entity.OauthClient{
		ID:          srv.uuidGen.Next(),
		Key:         input.Key,
		DisplayName: input.DisplayName,
		AppURI:      input.AppURI,
		CallbackURI: input.CallbackURI,
		SecretHash:  secretHash,
		CreatedAt:   srv.clock.Now(),
	}
	if err := srv.oauthRepo.CreateClient(ctx, client); err != nil {
		if errors.Is(err, repository.ErrOauthClientKeyTaken) {
			return nil, errors.Wrap(domainerrors.ErrOauthClientKeyInUse, *input.Key)
		}

		return nil, errors.Wrap(err, "failed to create oauth client")
	}

	srv.log(ctx).Info("OAuth client created", slog.Any("clientID", client.ID), slog.String("displayName", client.DisplayName))

	return client, nil
}

// GetClientByIDOrKey resolves a client from its id or its key.
func (srv *oauthService) GetClientByIDOrKey(ctx context.Context, acx entity.AuthContext, ref string) (*entity.OauthClient, error) {
	if err := requireSystem(acx, "client lookup"); err != nil {
		return nil, err
	}

	var (
		client *entity.OauthClient
		err    error
	)
	switch entity.ParseLogin(ref) {
	case entity.LoginTypeUUID:
		client, err = srv.oauthRepo.FindClientByID(ctx, uuid.MustParse(ref))
	case entity.LoginTypeOauthClientKey:
		client, err = srv.oauthRepo.FindClientByKey(ctx, ref)
	default:
		return nil, errors.Wrap(domainerrors.ErrOauthClientNotFound, "malformed client reference")
	}
	if err != nil {
		if errors.Is(err, repository.ErrOauthClientNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOauthClientNotFound, ref)
		}

		return nil, errors.Wrap(err, "failed to find oauth client")
	}

	return client, nil
}

// VerifyClientSecret compares a secret against the stored hash.
func (srv *oauthService) VerifyClientSecret(ctx context.Context, acx entity.AuthContext, clientID uuid.UUID, secret []byte) (bool, error) {
	if err := requireSystem(acx, "client secret verification"); err != nil {
		return false, err
	}

	client, err := srv.oauthRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrOauthClientNotFound) {
			return false, errors.Wrap(domainerrors.ErrOauthClientNotFound, clientID.String())
		}

		return false, errors.Wrap(err, "failed to find oauth client")
	}

	return srv.hasher.Check(secret, client.SecretHash), nil
}

// IssueAccessToken grants the client access to the user account.
func (srv *oauthService) IssueAccessToken(ctx context.Context, acx entity.AuthContext, clientID, userID uuid.UUID) (*entity.OauthAccessToken, error) {
	if err := requireSystem(acx, "access token issuance"); err != nil {
		return nil, err
	}

	client, err := srv.oauthRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrOauthClientNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOauthClientNotFound, clientID.String())
		}

		return nil, errors.Wrap(err, "failed to find oauth client")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, userID.String())
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	now := srv.clock.Now()
	token := &entity.OauthAccessToken{
		Key:            srv.uuidGen.Next().String(),
		Client:         client.Short(),
		User:           user.Short(),
		CTime:          now,
		ATime:          now,
		ExpirationTime: now.Add(srv.accessTokenTTL),
	}
	if err := srv.oauthRepo.CreateAccessToken(ctx, token); err != nil {
		return nil, errors.Wrap(err, "failed to create access token")
	}

	srv.log(ctx).Debug("Access token issued", slog.Any("clientID", clientID), slog.Any("userID", userID))

	return token, nil
}

// GetAccessTokenByKey returns a live access token and advances its access time.
func (srv *oauthService) GetAccessTokenByKey(ctx context.Context, acx entity.AuthContext, key string) (*entity.OauthAccessToken, error) {
	if err := requireSystem(acx, "access token lookup"); err != nil {
		return nil, err
	}

	now := srv.clock.Now()
	token, err := srv.oauthRepo.GetAndTouchAccessToken(ctx, key, now)
	if err != nil {
		if errors.Is(err, repository.ErrAccessTokenNotFound) {
			return nil, errors.Wrap(domainerrors.ErrNotFound, "access token not found")
		}

		return nil, errors.Wrap(err, "failed to get access token")
	}
	if token.IsExpired(now) {
		return nil, errors.Wrap(domainerrors.ErrNotFound, "access token expired")
	}

	return token, nil
}
