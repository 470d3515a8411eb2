// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
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

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	authRepo         repository.AuthRepository
	sessionRepo      repository.SessionRepository
	externalRepo     repository.ExternalAccountRepository
	remoteTokenRepo  repository.RemoteTokenRepository
	links            usecase.LinkUsecase
	oauth            usecase.OauthUsecase
	hasher           service.PasswordHasher
	emailTokens      service.EmailTokenService
	mailer           service.Mailer
	templater        service.EmailTemplater
	hammerfestClient service.HammerfestClient
	dinoparcClient   service.DinoparcClient
	twinoidClient    service.TwinoidClient
	uuidGen          service.UUIDGenerator
	clock            service.Clock
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	AuthRepo         repository.AuthRepository
	SessionRepo      repository.SessionRepository
	ExternalRepo     repository.ExternalAccountRepository
	RemoteTokenRepo  repository.RemoteTokenRepository
	Links            usecase.LinkUsecase
	Oauth            usecase.OauthUsecase
	Hasher           service.PasswordHasher
	EmailTokens      service.EmailTokenService
	Mailer           service.Mailer
	Templater        service.EmailTemplater
	HammerfestClient service.HammerfestClient
	DinoparcClient   service.DinoparcClient
	TwinoidClient    service.TwinoidClient
	UUIDGen          service.UUIDGenerator
	Clock            service.Clock
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		authRepo:         params.AuthRepo,
		sessionRepo:      params.SessionRepo,
		externalRepo:     params.ExternalRepo,
		remoteTokenRepo:  params.RemoteTokenRepo,
		links:            params.Links,
		oauth:            params.Oauth,
		hasher:           params.Hasher,
		emailTokens:      params.EmailTokens,
		mailer:           params.Mailer,
		templater:        params.Templater,
		hammerfestClient: params.HammerfestClient,
		dinoparcClient:   params.DinoparcClient,
		twinoidClient:    params.TwinoidClient,
		uuidGen:          params.UUIDGen,
		clock:            params.Clock,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// requireGuest accepts anonymous callers only.
func requireGuest(acx entity.AuthContext, action string) error {
	switch acx.(type) {
	case *entity.GuestAuthContext:
		return nil
	case *entity.UserAuthContext, *entity.AccessTokenAuthContext, *entity.OauthClientAuthContext, *entity.SystemAuthContext:
		return domainerrors.ErrForbidden.WithDetails(action + " requires a guest auth context")
	default:
		return domainerrors.ErrAssertion.WithDetails("unexpected auth context")
	}
}

// RegisterOrLoginWithEmail sends a signed registration token to the address.
func (srv *authService) RegisterOrLoginWithEmail(ctx context.Context, acx entity.AuthContext, input usecase.RegisterOrLoginWithEmailInput) error {
	if err := requireGuest(acx, "email registration"); err != nil {
		return err
	}

	locale := input.Locale
	if locale == "" {
		locale = entity.DefaultLocale
	}

	token, err := srv.emailTokens.Create(input.Email, srv.clock.Now())
	if err != nil {
		return errors.Wrap(err, "failed to create email token")
	}

	content, err := srv.templater.VerifyRegistrationEmail(locale, token)
	if err != nil {
		return errors.Wrap(err, "failed to render registration email")
	}

	email := &service.OutboundEmail{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		To:        input.Email,
		Title:     content.Title,
		TextBody:  content.TextBody,
		HTMLBody:  content.HTMLBody,
	}
	if err := srv.mailer.Send(ctx, email); err != nil {
		srv.log(ctx).Error("Failed to send registration email", slog.String("email", input.Email), slog.Any("error", err))

		return nil
	}

	srv.log(ctx).Debug("Registration email sent", slog.String("email", input.Email), slog.String("locale", locale))

	return nil
}

// RegisterWithVerifiedEmail creates a user owning the email proven by the token.
func (srv *authService) RegisterWithVerifiedEmail(ctx context.Context, acx entity.AuthContext, input usecase.RegisterWithVerifiedEmailInput) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "email registration"); err != nil {
		return nil, err
	}

	now := srv.clock.Now()
	claims, err := srv.emailTokens.Verify(input.EmailToken, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify email token")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	email := claims.Email
	user := &entity.User{
		ID:          srv.uuidGen.Next(),
		DisplayName: input.DisplayName,
		Email:       &email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.createUser(ctx, user, passwordHash, now); err != nil {
		return nil, err
	}

	verification := &entity.EmailVerification{
		UserID:         user.ID,
		Email:          email,
		CTime:          claims.IssuedAt.Time,
		ValidationTime: now,
	}
	if err := srv.authRepo.CreateEmailVerification(ctx, verification); err != nil {
		srv.log(ctx).Warn("Failed to record email verification", slog.Any("userID", user.ID), slog.Any("error", err))
	}

	srv.log(ctx).Info("User registered with email", slog.Any("userID", user.ID))

	return srv.createSession(ctx, user)
}

// RegisterWithUsername creates a user identified by a username and password.
func (srv *authService) RegisterWithUsername(ctx context.Context, acx entity.AuthContext, input usecase.RegisterWithUsernameInput) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "username registration"); err != nil {
		return nil, err
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := srv.clock.Now()
	username := input.Username
	user := &entity.User{
		ID:          srv.uuidGen.Next(),
		DisplayName: input.DisplayName,
		Username:    &username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.createUser(ctx, user, passwordHash, now); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User registered with username", slog.Any("userID", user.ID), slog.String("username", username))

	return srv.createSession(ctx, user)
}

func (srv *authService) createUser(ctx context.Context, user *entity.User, passwordHash string, now time.Time) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		if passwordHash == "" {
			return nil
		}
		if err := repoFactory.AuthRepo().SetPasswordHash(ctx, user.ID, passwordHash, now); err != nil {
			return errors.Wrap(err, "failed to set password")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.Any("userID", user.ID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute user creation transaction")
	}

	return nil
}

// LoginWithCredentials authenticates with an email or username and a password.
func (srv *authService) LoginWithCredentials(ctx context.Context, acx entity.AuthContext, input usecase.LoginInput) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "login"); err != nil {
		return nil, err
	}

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(input.Login, "@") {
		user, err = srv.userRepo.FindByEmail(ctx, input.Login)
	} else {
		user, err = srv.userRepo.FindByUsername(ctx, input.Login)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	passwordHash, err := srv.authRepo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPassword) {
			return nil, errors.Wrap(domainerrors.ErrNoPassword, "login failed")
		}

		return nil, errors.Wrap(err, "failed to get password hash")
	}

	// bcrypt is CPU-bound: keep it outside any transaction.
	if !srv.hasher.Check(input.Password, passwordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("userID", user.ID), slog.Any("error", domainerrors.ErrInvalidPassword))

		return nil, errors.Wrap(domainerrors.ErrInvalidPassword, "login failed")
	}

	srv.log(ctx).Debug("User logged in", slog.Any("userID", user.ID))

	return srv.createSession(ctx, user)
}

// RegisterOrLoginWithDinoparc logs in through a Dinoparc account.
func (srv *authService) RegisterOrLoginWithDinoparc(ctx context.Context, acx entity.AuthContext, credentials entity.RemoteCredentials) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "dinoparc login"); err != nil {
		return nil, err
	}

	session, err := srv.dinoparcClient.CreateSession(ctx, credentials)
	if err != nil {
		return nil, errors.Wrap(err, "dinoparc login failed")
	}

	return srv.registerOrLoginWithRemote(ctx, session.User, session)
}

// RegisterOrLoginWithHammerfest logs in through a Hammerfest account.
func (srv *authService) RegisterOrLoginWithHammerfest(ctx context.Context, acx entity.AuthContext, credentials entity.RemoteCredentials) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "hammerfest login"); err != nil {
		return nil, err
	}

	session, err := srv.hammerfestClient.CreateSession(ctx, credentials)
	if err != nil {
		return nil, errors.Wrap(err, "hammerfest login failed")
	}

	return srv.registerOrLoginWithRemote(ctx, session.User, session)
}

// RegisterOrLoginWithTwinoidOauth logs in through a Twinoid access token.
func (srv *authService) RegisterOrLoginWithTwinoidOauth(ctx context.Context, acx entity.AuthContext, accessToken string) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "twinoid login"); err != nil {
		return nil, err
	}

	remoteUser, err := srv.twinoidClient.GetMe(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "twinoid login failed")
	}

	return srv.registerOrLoginWithRemote(ctx, *remoteUser, nil)
}

// registerOrLoginWithRemote reuses the user linked to the remote account, or
// creates one linked to itself on first login.
func (srv *authService) registerOrLoginWithRemote(ctx context.Context, remote entity.RemoteUser, remoteSession *entity.RemoteSession) (*entity.UserAndSession, error) {
	now := srv.clock.Now()
	key := remote.Key

	if err := srv.externalRepo.Touch(ctx, remote, now); err != nil {
		return nil, errors.Wrap(err, "failed to touch remote user")
	}

	if remoteSession != nil {
		if err := srv.remoteTokenRepo.TouchSession(ctx, remoteSession, now); err != nil {
			srv.log(ctx).Warn("Failed to record remote session", slog.String("key", key.String()), slog.Any("error", err))
		}
	}

	link, err := srv.getLink(ctx, key)
	if err != nil {
		return nil, err
	}

	userID, err := srv.claimRemoteAccount(ctx, remote, link, now)
	if err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrAssertion.WithDetails("linked user " + userID.String() + " does not exist")
		}

		return nil, errors.Wrap(err, "failed to reload user")
	}

	return srv.createSession(ctx, user)
}

// claimRemoteAccount returns the user currently linked to the remote account.
// Without one, a new user and its self made link are written in a single unit
// of work under the remote account lock, so concurrent first logins resolve to
// the same user.
func (srv *authService) claimRemoteAccount(ctx context.Context, remote entity.RemoteUser, link *entity.VersionedLink, now time.Time) (uuid.UUID, error) {
	if link.Current != nil {
		return link.Current.User.ID, nil
	}

	key := remote.Key
	var (
		userID  uuid.UUID
		created bool
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		linkRepo := repoFactory.LinkRepo()
		if err := linkRepo.LockRemote(ctx, key); err != nil {
			return errors.Wrap(err, "failed to lock remote account")
		}

		current, err := linkRepo.FindCurrentByRemote(ctx, key)
		switch {
		case err == nil:
			userID = current.UserID

			return nil
		case !errors.Is(err, repository.ErrLinkNotFound):
			return errors.Wrap(err, "failed to find current link of remote account")
		}

		user := &entity.User{
			ID:          srv.uuidGen.Next(),
			DisplayName: entity.RemoteDisplayName(key.Service, remote.Username),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repoFactory.UserRepo().Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		// The user is new, so its slot on this server is free.
		record := &entity.LinkRecord{
			ID:       srv.uuidGen.Next(),
			Key:      key,
			UserID:   user.ID,
			LinkedAt: now,
			LinkedBy: user.ID,
		}
		if err := linkRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to link new user")
		}

		userID, created = user.ID, true

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to register through remote account", slog.String("key", key.String()), slog.Any("error", err))

		return uuid.Nil, errors.Wrap(err, "failed to execute remote registration transaction")
	}

	if created {
		srv.log(ctx).Info("User registered through remote account", slog.Any("userID", userID), slog.String("key", key.String()))
	}

	return userID, nil
}

func (srv *authService) getLink(ctx context.Context, key entity.RemoteAccountKey) (*entity.VersionedLink, error) {
	switch key.Service {
	case entity.RemoteServiceDinoparc:
		return srv.links.GetLinkFromDinoparc(ctx, key.Server, key.RemoteID)
	case entity.RemoteServiceHammerfest:
		return srv.links.GetLinkFromHammerfest(ctx, key.Server, key.RemoteID)
	case entity.RemoteServiceTwinoid:
		return srv.links.GetLinkFromTwinoid(ctx, key.RemoteID)
	default:
		return nil, domainerrors.ErrAssertion.WithDetails("unknown remote service " + key.Service.String())
	}
}

func (srv *authService) createSession(ctx context.Context, user *entity.User) (*entity.UserAndSession, error) {
	now := srv.clock.Now()
	session := &entity.Session{
		ID:    srv.uuidGen.Next(),
		User:  user.Short(),
		CTime: now,
		ATime: now,
	}
	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	return &entity.UserAndSession{
		User:            user,
		IsAdministrator: user.IsAdministrator,
		Session:         session,
	}, nil
}

// AuthenticateSession resolves a session id and advances its access time.
func (srv *authService) AuthenticateSession(ctx context.Context, acx entity.AuthContext, sessionID uuid.UUID) (*entity.UserAndSession, error) {
	if err := requireGuest(acx, "session authentication"); err != nil {
		return nil, err
	}

	session, err := srv.sessionRepo.GetAndTouch(ctx, sessionID, srv.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to touch session")
	}

	user, err := srv.userRepo.FindByID(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Session refers to a missing user", slog.Any("sessionID", sessionID), slog.Any("userID", session.User.ID))

			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find session user")
	}

	return &entity.UserAndSession{
		User:            user,
		IsAdministrator: user.IsAdministrator,
		Session:         session,
	}, nil
}

// AuthenticateAccessToken resolves an OAuth access token into the context of
// the client acting for the user.
func (srv *authService) AuthenticateAccessToken(ctx context.Context, tokenKey string) (entity.AuthContext, error) {
	token, err := srv.oauth.GetAccessTokenByKey(ctx, entity.System(), tokenKey)
	if err != nil {
		return nil, err
	}

	return &entity.AccessTokenAuthContext{
		AuthScope: entity.AuthScopeDefault,
		Client:    token.Client,
		User:      token.User,
	}, nil
}

// AuthenticateCredentials authenticates a machine client by id or key and secret.
func (srv *authService) AuthenticateCredentials(ctx context.Context, credentials entity.Credentials) (entity.AuthContext, error) {
	system := entity.System()

	var client *entity.OauthClient
	if entity.ParseLogin(credentials.Login) == entity.LoginTypeUUID {
		loginID := uuid.MustParse(credentials.Login)

		var err error
		client, err = srv.oauth.GetClientByIDOrKey(ctx, system, credentials.Login)
		if err != nil && !errors.Is(err, domainerrors.ErrOauthClientNotFound) {
			return nil, err
		}

		_, userErr := srv.userRepo.FindByID(ctx, loginID)
		if userErr != nil && !errors.Is(userErr, repository.ErrUserNotFound) {
			return nil, errors.Wrap(userErr, "failed to find user")
		}
		userFound := userErr == nil

		switch {
		case client != nil && userFound:
			return nil, domainerrors.ErrAssertion.WithDetails("id " + credentials.Login + " matches both a client and a user")
		case client == nil && userFound:
			return nil, domainerrors.ErrNotImplemented.WithDetails("user credentials authentication")
		case client == nil:
			return nil, errors.Wrap(domainerrors.ErrNotFound, "no client or user with this id")
		}
	} else {
		var err error
		client, err = srv.oauth.GetClientByIDOrKey(ctx, system, credentials.Login)
		if err != nil {
			return nil, err
		}
	}

	ok, err := srv.oauth.VerifyClientSecret(ctx, system, client.ID, credentials.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrInvalidSecret, "client authentication failed")
	}

	return &entity.OauthClientAuthContext{AuthScope: entity.AuthScopeDefault, Client: client.Short()}, nil
}

// HasPassword reports whether the user can log in with a password.
func (srv *authService) HasPassword(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := srv.authRepo.GetPasswordHash(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNoPassword):
		return false, nil
	default:
		return false, errors.Wrap(err, "failed to get password hash")
	}
}

// Logout deletes the session.
func (srv *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := srv.sessionRepo.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}
