package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SendJSON posts body as JSON to url with optional headers and returns the raw
// response body and status code. Non-2xx responses are returned as errors
// along with the body.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *zap.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", zap.String("req_id", reqID), zap.Error(err))
		return nil, 0, eris.Wrap(err, "encode json")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", zap.String("req_id", reqID), zap.Error(err))
		return nil, 0, eris.Wrap(err, "build request")
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("llm.http.request",
		zap.String("req_id", reqID),
		zap.String("url", url),
		zap.Int("content_length", len(bs)),
	)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("llm.http.send_error",
			zap.String("req_id", reqID),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return nil, 0, eris.Wrap(err, "send request")
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", zap.String("req_id", reqID), zap.Error(err))
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "read response")
	}

	logger.Debug("llm.http.response",
		zap.String("req_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, eris.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
