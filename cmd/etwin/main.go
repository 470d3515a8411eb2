package main

import (
	"context"
	"log/slog"
	"os"

	"etwin/config"
	"etwin/internal/delivery"
	"etwin/internal/delivery/http"
	"etwin/internal/delivery/http/middleware"
	"etwin/internal/delivery/http/router/handler"
	"etwin/internal/infra/auth"
	"etwin/internal/infra/generator"
	logs "etwin/internal/infra/log"
	"etwin/internal/infra/mail"
	"etwin/internal/infra/persistence/memory"
	"etwin/internal/infra/persistence/postgres"
	"etwin/internal/infra/pubsub"
	"etwin/internal/infra/remote"
	"etwin/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(),
		injectRepo(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			logs.New,
			context.Background,
		),
		remote.Module,
		pubsub.Module,
	)
}

// injectRepo binds the stores to the configured backend.
func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Storage.Backend == config.StoragePostgres {
		return fx.Provide(
			postgres.New,
			postgres.NewUserRepository,
			postgres.NewAuthRepository,
			postgres.NewSessionRepository,
			postgres.NewLinkRepository,
			postgres.NewExternalAccountRepository,
			postgres.NewRemoteTokenRepository,
			postgres.NewOauthRepository,
			postgres.NewTransactionManager,
		)
	}

	return fx.Provide(
		memory.NewStore,
		memory.NewUserRepository,
		memory.NewAuthRepository,
		memory.NewSessionRepository,
		memory.NewLinkRepository,
		memory.NewExternalAccountRepository,
		memory.NewRemoteTokenRepository,
		memory.NewOauthRepository,
		memory.NewTransactionManager,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewEmailTokenService,
			mail.NewEmailTemplater,
			generator.NewUUIDGenerator,
			generator.NewSystemClock,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLinkService,
			impl.NewOauthService,
			impl.NewAuthService,
			impl.NewUserService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
