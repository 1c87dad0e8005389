package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/llm"
)

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements llm.Completer with a single JSON-mode chat completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You extract purchase data from receipt emails and answer with JSON only."},
			{"role": "user", "content": prompt},
		},
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Warn("llm.openai.http_error",
			zap.Int("status", status),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return "", eris.Wrap(err, "openai: chat completion")
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", eris.Wrap(err, "openai: decode response")
	}
	if len(cc.Choices) == 0 {
		return "", eris.New("openai: no choices in response")
	}

	c.log.Debug("llm.openai.ok",
		zap.String("model", c.cfg.Model),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
