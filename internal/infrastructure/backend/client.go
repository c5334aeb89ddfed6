// Package backend implements the REST client for the document workspace
// backend: documents, conversations, retrieval chat, and the guest demo
// chat endpoint.
package backend

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarkov/docuchat/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration

	// Outbound request budget. RateLimitRPS <= 0 disables throttling.
	RateLimitRPS   float64
	RateLimitBurst int

	Resilience resilience.Config
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	burst := 0
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
		burst = cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AuthToken,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		exec:       resilience.NewExecutor(cfg.Resilience, classifyBackendError),
	}
}
