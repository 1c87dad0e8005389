// Package anthropic implements llm.Completer on top of the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

const (
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 1024
	systemPrompt     = "You extract purchase data from receipt emails and answer with a single JSON object only."
)

// Config for the Anthropic client. Retries are always disabled: the pipeline
// makes exactly one attempt per message.
type Config struct {
	APIKey      string
	BaseURL     string // optional override, used by tests
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

type Client struct {
	client sdk.Client
	cfg    Config
	log    *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		client: sdk.NewClient(opts...),
		cfg:    cfg,
		log:    common.OrNop(logger),
	}
}

// Complete implements llm.Completer and returns the concatenated text blocks
// of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = sdk.Float(c.cfg.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.Warn("llm.anthropic.error",
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", eris.New("anthropic: no text in response")
	}

	c.log.Debug("llm.anthropic.ok",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return strings.TrimSpace(b.String()), nil
}
