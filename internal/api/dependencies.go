package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/config"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/live"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/store"
	"routegraph/dashboard/internal/workers"
	"routegraph/dashboard/internal/workspace"
)

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Redis    *redis.Client
	Storage  store.IdentityStorage
	Hub      *live.Hub
	Channel  *live.Channel
	Workers  *workers.WorkersContainer
	Registry *common.WorkspaceRegistry
	Signer   *common.SessionSigner
	UpSince  time.Time
}

// InitDependencies wires every long-lived component. The live channel is
// built but not connected.
func InitDependencies(ctx context.Context, cfg *config.Config, m *metrics.MetricsRegistry) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Metrics: m,
		Hub:     live.NewHub(m),
		Signer:  common.NewSessionSigner([]byte(cfg.SessionSecret), cfg.SessionTTL),
		UpSince: time.Now(),
	}

	if cfg.PushTransport == "redis" || cfg.IdentityStore == "redis" {
		deps.Redis = common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
	}

	switch cfg.IdentityStore {
	case "redis":
		deps.Storage = common.NewRedisIdentityStorage(deps.Redis, cfg.SessionTTL)
	default:
		deps.Storage = common.NewMemoryIdentityStorage(cfg.SessionTTL)
	}

	var transport live.Transport
	switch cfg.PushTransport {
	case "redis":
		transport = live.NewRedisTransport(deps.Redis)
	case "stomp":
		transport = live.NewStompTransport(live.DefaultStompSettings(cfg.PushURL))
	default:
		return nil, fmt.Errorf("unknown push transport %q", cfg.PushTransport)
	}
	settings := live.DefaultChannelSettings()
	settings.ReconnectDelay = cfg.PushReconnectDelay
	deps.Channel = live.NewChannel(transport, deps.Hub, settings, m)

	deps.Workers = workers.InitWorkers(ctx, cfg.ImportWatchInterval, constants.DefaultImportWatchDeadline, m)

	deps.Registry = common.NewWorkspaceRegistry(cfg.SessionTTL, deps.Hub, deps.NewWorkspace)
	return deps, nil
}

// NewWorkspace builds the workspace of one browser session.
func (d *Dependencies) NewWorkspace(sessionID string) *workspace.Workspace {
	return workspace.New(sessionID, workspace.Options{
		BackendBaseURL: d.Config.BackendBaseURL,
		Placement:      d.Config.PagePlacement,
		PageSize:       d.Config.RoutesPageSize,
		Storage:        d.Storage,
		Watcher:        d.Workers.ImportWatcher,
		Metrics:        d.Metrics,
	})
}

// Close releases connections held by the dependencies.
func (d *Dependencies) Close() {
	if d.Channel != nil {
		d.Channel.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
