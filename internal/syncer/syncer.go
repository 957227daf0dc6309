// Package syncer mirrors daily record writes to a remote account backend.
// Mirroring is best effort: callers log failures and carry on.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/wird/internal/model"
)

var ErrRejected = errors.New("syncer: remote rejected record")

type Sink interface {
	Push(ctx context.Context, rec model.DailyRecord) error
}

type NoopSink struct{}

func (NoopSink) Push(context.Context, model.DailyRecord) error { return nil }

// HTTPSink PUTs records to <base>/api/mirror/records/<date>.
type HTTPSink struct {
	baseURL  string
	deviceID string
	client   *http.Client
}

func NewHTTPSink(baseURL, deviceID string, timeout time.Duration) (*HTTPSink, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("syncer: base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("syncer: invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &HTTPSink{baseURL: trimmed, deviceID: deviceID, client: &http.Client{Timeout: timeout}}, nil
}

type mirrorPayload struct {
	model.DailyRecord
	Device string `json:"device"`
}

func (s *HTTPSink) Push(ctx context.Context, rec model.DailyRecord) error {
	body, err := json.Marshal(mirrorPayload{DailyRecord: rec, Device: s.deviceID})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	endpoint := s.baseURL + "/api/mirror/records/" + rec.Date.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push %s: %w", rec.Date, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s status %d", ErrRejected, rec.Date, resp.StatusCode)
	}
	return nil
}
