package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmarkov/docuchat/internal/config"
	"github.com/dmarkov/docuchat/internal/core/domain"
	"github.com/dmarkov/docuchat/internal/core/usecase"
	"github.com/dmarkov/docuchat/internal/infrastructure/backend"
	"github.com/dmarkov/docuchat/internal/infrastructure/resilience"
	"github.com/dmarkov/docuchat/internal/observability/logging"
	"github.com/dmarkov/docuchat/internal/observability/metrics"
)

// App wires the persisted workspace surface: registry, lifecycle,
// processing, session, and the scoped retrieval chat.
type App struct {
	Config  config.Config
	Log     *slog.Logger
	Metrics *metrics.ClientMetrics

	Registry    *usecase.DocumentRegistry
	Lifecycle   *usecase.DocumentLifecycle
	Coordinator *usecase.ProcessingCoordinator
	Session     *usecase.ConversationSession
	Chat        *usecase.RetrievalChat

	closeFn func()
}

// GuestApp wires the zero-persistence demo surface.
type GuestApp struct {
	Config  config.Config
	Log     *slog.Logger
	Metrics *metrics.ClientMetrics

	Chat *usecase.GuestChat
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	surface := chatSurface(cfg.BotType)
	log := logging.NewJSONLogger(surface, cfg.LogLevel)
	m := metrics.NewClientMetrics(surface)
	client := newBackendClient(cfg)

	registry := usecase.NewDocumentRegistry(client, log, m)
	lifecycle := usecase.NewDocumentLifecycle(client, registry, log, m)
	coordinator := usecase.NewProcessingCoordinator(client, registry, log, m)
	session := usecase.NewConversationSession(client, domain.BotType(cfg.BotType), log, m, cfg.PersistQueueSize)
	chat := usecase.NewRetrievalChat(client, session, registry, log, m, surface)

	// Initial mirror of the backend's documents. A failure here is not
	// fatal: the surface starts empty and the first refresh tries again.
	if _, err := registry.List(ctx); err != nil {
		log.Warn("initial_document_list_failed", "error", err)
	}

	return &App{
		Config:      cfg,
		Log:         log,
		Metrics:     m,
		Registry:    registry,
		Lifecycle:   lifecycle,
		Coordinator: coordinator,
		Session:     session,
		Chat:        chat,
		closeFn: func() {
			session.Close()
		},
	}, nil
}

func NewGuest(cfg config.Config) *GuestApp {
	log := logging.NewJSONLogger("guest", cfg.LogLevel)
	m := metrics.NewClientMetrics("guest")
	client := newBackendClient(cfg)

	return &GuestApp{
		Config:  cfg,
		Log:     log,
		Metrics: m,
		Chat:    usecase.NewGuestChat(client, log, m, cfg.GuestMaxFileBytes),
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// chatSurface maps the configured bot type to the product surface the chat
// client serves.
func chatSurface(botType string) string {
	if botType == string(domain.BotTypeCustomBot) {
		return "personalization"
	}
	return "workspace"
}

func newBackendClient(cfg config.Config) *backend.Client {
	return backend.New(backend.Config{
		BaseURL:        cfg.BackendURL,
		AuthToken:      cfg.AuthToken,
		Timeout:        time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Resilience: resilience.Config{
			RetryMaxAttempts:    cfg.RetryMaxAttempts,
			RetryInitialBackoff: time.Duration(cfg.RetryInitialBackoffMs) * time.Millisecond,
			RetryMaxBackoff:     time.Duration(cfg.RetryMaxBackoffMs) * time.Millisecond,
			RetryMultiplier:     cfg.RetryMultiplier,
			BreakerEnabled:      cfg.BreakerEnabled,
			BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
			BreakerFailureRatio: cfg.BreakerFailureRatio,
			BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSecs) * time.Second,
		},
	})
}
