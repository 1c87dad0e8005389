package openai

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

// Config for the OpenAI chat/completions client. The API key must be set by
// the caller; the client never reads the environment.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string // e.g. "gpt-4o-mini"
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  common.OrNop(logger),
	}
}
