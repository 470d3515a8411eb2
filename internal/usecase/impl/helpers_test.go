package impl

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"etwin/config"
	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"
	"etwin/internal/domain/service"
	"etwin/internal/infra/auth"
	"etwin/internal/infra/generator"
	"etwin/internal/infra/mail"
	"etwin/internal/infra/persistence/memory"
	"etwin/internal/infra/remote"
	mockSvc "etwin/internal/mocks/service"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:     4,
			EmailTokenTTL:  24 * time.Hour,
			AccessTokenTTL: time.Hour,
		},
	}
	cfg.SecretKey.Token = "dev_secret"

	return cfg
}

// testEnv wires every service over the in-memory backend, the in-memory
// remote platforms and a virtual clock.
type testEnv struct {
	clock       *generator.VirtualClock
	store       *memory.Store
	userRepo    repository.UserRepository
	authRepo    repository.AuthRepository
	sessionRepo repository.SessionRepository
	emailTokens service.EmailTokenService
	mailer      *mockSvc.MockMailer
	hammerfest  *remote.HammerfestMemoryClient
	dinoparc    *remote.DinoparcMemoryClient
	twinoid     *remote.TwinoidMemoryClient
	links       usecase.LinkUsecase
	oauth       usecase.OauthUsecase
	auth        usecase.AuthUsecase
	users       usecase.UserUsecase
}

// testEnvOptions swaps collaborators of the environment.
type testEnvOptions struct {
	uuidGen         service.UUIDGenerator
	wrapLinks       func(usecase.LinkUsecase) usecase.LinkUsecase
	remoteTokenRepo repository.RemoteTokenRepository
}

type testEnvOption func(*testEnvOptions)

func withUUIDGenerator(gen service.UUIDGenerator) testEnvOption {
	return func(o *testEnvOptions) { o.uuidGen = gen }
}

func withRemoteTokenRepository(repo repository.RemoteTokenRepository) testEnvOption {
	return func(o *testEnvOptions) { o.remoteTokenRepo = repo }
}

// withLinksSeenByAuth wraps the link usecase handed to the auth service only.
func withLinksSeenByAuth(wrap func(usecase.LinkUsecase) usecase.LinkUsecase) testEnvOption {
	return func(o *testEnvOptions) { o.wrapLinks = wrap }
}

func newTestEnv(t *testing.T, opts ...testEnvOption) *testEnv {
	t.Helper()

	options := testEnvOptions{
		uuidGen:   generator.NewUUIDGenerator(),
		wrapLinks: func(links usecase.LinkUsecase) usecase.LinkUsecase { return links },
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := newTestConfig()
	logger := newDiscardLogger()
	clock := generator.NewVirtualClock(testEpoch)
	uuidGen := options.uuidGen
	hasher := auth.NewBcryptHasher(cfg)
	emailTokens, err := auth.NewEmailTokenService(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	env := &testEnv{
		clock:       clock,
		store:       store,
		userRepo:    memory.NewUserRepository(store),
		authRepo:    memory.NewAuthRepository(store),
		sessionRepo: memory.NewSessionRepository(store),
		emailTokens: emailTokens,
		mailer:      mockSvc.NewMockMailer(t),
		hammerfest:  remote.NewHammerfestMemoryClient(clock),
		dinoparc:    remote.NewDinoparcMemoryClient(clock),
		twinoid:     remote.NewTwinoidMemoryClient(),
	}
	externalRepo := memory.NewExternalAccountRepository(store)
	remoteTokenRepo := options.remoteTokenRepo
	if remoteTokenRepo == nil {
		remoteTokenRepo = memory.NewRemoteTokenRepository(store)
	}
	txManager := memory.NewTransactionManager(store)

	env.links = NewLinkService(LinkServiceParams{
		TxManager:    txManager,
		UserRepo:     env.userRepo,
		LinkRepo:     memory.NewLinkRepository(store),
		ExternalRepo: externalRepo,
		UUIDGen:      uuidGen,
		Clock:        clock,
		Logger:       logger,
	})
	env.oauth = NewOauthService(OauthServiceParams{
		OauthRepo: memory.NewOauthRepository(store),
		UserRepo:  env.userRepo,
		Hasher:    hasher,
		UUIDGen:   uuidGen,
		Clock:     clock,
		Config:    cfg,
		Logger:    logger,
	})
	env.auth = NewAuthService(AuthServiceParams{
		TxManager:        txManager,
		UserRepo:         env.userRepo,
		AuthRepo:         env.authRepo,
		SessionRepo:      env.sessionRepo,
		ExternalRepo:     externalRepo,
		RemoteTokenRepo:  remoteTokenRepo,
		Links:            options.wrapLinks(env.links),
		Oauth:            env.oauth,
		Hasher:           hasher,
		EmailTokens:      emailTokens,
		Mailer:           env.mailer,
		Templater:        mail.NewEmailTemplater(cfg),
		HammerfestClient: env.hammerfest,
		DinoparcClient:   env.dinoparc,
		TwinoidClient:    env.twinoid,
		UUIDGen:          uuidGen,
		Clock:            clock,
		Logger:           logger,
	})
	env.users = NewUserService(UserServiceParams{
		UserRepo:         env.userRepo,
		AuthRepo:         env.authRepo,
		ExternalRepo:     externalRepo,
		RemoteTokenRepo:  remoteTokenRepo,
		Links:            env.links,
		HammerfestClient: env.hammerfest,
		DinoparcClient:   env.dinoparc,
		TwinoidClient:    env.twinoid,
		Clock:            clock,
		Logger:           logger,
	})

	return env
}

// recordingUUIDGenerator remembers every id it hands out.
type recordingUUIDGenerator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (g *recordingUUIDGenerator) Next() uuid.UUID {
	id := uuid.New()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = append(g.ids, id)

	return id
}

// countUsers returns how many of the generated ids name a stored user.
func (env *testEnv) countUsers(t *testing.T, gen *recordingUUIDGenerator) int {
	t.Helper()

	gen.mu.Lock()
	ids := slices.Clone(gen.ids)
	gen.mu.Unlock()

	count := 0
	for _, id := range ids {
		_, err := env.userRepo.FindByID(context.Background(), id)
		if err == nil {
			count++

			continue
		}
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	}

	return count
}

// registerUser creates a user with a username and the password "hunter22".
// The first user registered in an environment is the administrator.
func (env *testEnv) registerUser(t *testing.T, username string) *entity.UserAndSession {
	t.Helper()

	result, err := env.auth.RegisterWithUsername(context.Background(), entity.Guest(), usecase.RegisterWithUsernameInput{
		Username:    username,
		DisplayName: username,
		Password:    []byte("hunter22"),
	})
	require.NoError(t, err)

	return result
}

func userAcx(result *entity.UserAndSession) *entity.UserAuthContext {
	return entity.NewUserAuthContext(result.User)
}
