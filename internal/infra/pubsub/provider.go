// Package pubsub delivers outgoing emails to the mail worker through a
// Pub/Sub topic, or through a local HTTP push endpoint in development.
package pubsub

import (
	"context"
	"log/slog"

	"etwin/config"
	"etwin/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopMailer only logs emails. It is used when Pub/Sub is disabled.
type noopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that drops every email.
func NewNoopMailer(logger *slog.Logger) service.Mailer {
	return &noopMailer{logger: logger}
}

func (m *noopMailer) Send(ctx context.Context, email *service.OutboundEmail) error {
	m.logger.Debug("[NoopMailer] Email delivery disabled, skipping",
		slog.String("to", email.To),
		slog.String("title", email.Title),
	)

	return nil
}

func (m *noopMailer) Close() error {
	return nil
}

// MailerParams holds dependencies for Mailer, injected by Fx
type MailerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMailer creates a Mailer based on configuration
func NewMailer(params MailerParams) (service.Mailer, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	// If PubSub is not configured, return a no-op mailer
	if cfg == nil || cfg.Provider == "" || cfg.Provider == config.PubSubProviderNoop {
		logger.Info("PubSub not configured, using no-op mailer")

		return NewNoopMailer(logger), nil
	}

	var mailer service.Mailer
	var err error

	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP push for emails",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		mailer = NewLocalHTTPMailer(cfg.LocalEndpoint, logger)

	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub for emails",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		mailer, err = NewGooglePubSubMailer(params.Ctx, cfg.ProjectID, cfg.TopicID, cfg.CredentialsFile, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	// Register lifecycle hook to close mailer on shutdown
	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Mailer")

			return mailer.Close()
		},
	})

	return mailer, nil
}

// Module provides the mailer FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMailer),
)
