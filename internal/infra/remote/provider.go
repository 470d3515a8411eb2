package remote

import (
	"log/slog"

	"etwin/config"
	"etwin/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TwinoidParams holds dependencies for TwinoidClient, injected by Fx
type TwinoidParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Memory *TwinoidMemoryClient
}

// NewTwinoidClient picks the Twinoid client configured by remote.twinoid.mode.
func NewTwinoidClient(params TwinoidParams) (service.TwinoidClient, error) {
	cfg := params.Config.Remote.Twinoid

	switch cfg.Mode {
	case config.RemoteModeMemory, "":
		params.Logger.Info("Using in-memory Twinoid client")

		return params.Memory, nil
	case config.RemoteModeHTTP:
		params.Logger.Info("Using Twinoid HTTP client", slog.String("base_url", cfg.BaseURL))

		return NewTwinoidHTTPClient(cfg.BaseURL, cfg.Timeout, params.Logger), nil
	default:
		return nil, errors.Errorf("unknown twinoid client mode: %s", cfg.Mode)
	}
}

// Module provides the remote platform clients. Hammerfest and Dinoparc only
// have in-memory clients.
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewHammerfestMemoryClient,
		NewDinoparcMemoryClient,
		NewTwinoidMemoryClient,
		func(c *HammerfestMemoryClient) service.HammerfestClient { return c },
		func(c *DinoparcMemoryClient) service.DinoparcClient { return c },
		NewTwinoidClient,
	),
)
