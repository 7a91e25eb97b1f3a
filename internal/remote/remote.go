package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

// Endpoint propagates one queued mutation to the remote counterpart. Push
// must be idempotent per entry: replaying an already-applied entry is safe,
// which lets the drain resume after a mid-queue failure.
type Endpoint interface {
	Push(ctx context.Context, entry models.SyncQueueEntry) error
}

// HTTPEndpoint replays entries against a JSON API. Creates and updates are
// PUT (idempotent upsert keyed by record ID); deletes are DELETE.
type HTTPEndpoint struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEndpoint builds a client for the given base URL.
func NewHTTPEndpoint(baseURL string, timeout time.Duration) *HTTPEndpoint {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPEndpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Push implements Endpoint.
func (e *HTTPEndpoint) Push(ctx context.Context, entry models.SyncQueueEntry) error {
	recordID, err := payloadID(entry.Payload)
	if err != nil {
		return fmt.Errorf("sync entry %s: %w", entry.ID, err)
	}
	url := fmt.Sprintf("%s/%s/%s", e.baseURL, entry.Collection, recordID)

	var req *http.Request
	switch entry.Op {
	case models.SyncOpDelete:
		req, err = http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(entry.Payload))
	}
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("push sync entry %s: %w", entry.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// A delete of a record the remote never saw is already converged.
	if entry.Op == models.SyncOpDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push sync entry %s: remote returned %d", entry.ID, resp.StatusCode)
	}
	return nil
}

func payloadID(payload json.RawMessage) (string, error) {
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	if envelope.ID == "" {
		return "", fmt.Errorf("payload has no id")
	}
	return envelope.ID, nil
}

// LogEndpoint acknowledges every entry after logging it. It stands in for
// deployments without a remote counterpart; the drain still consumes the
// queue and marks students synced.
type LogEndpoint struct {
	logger *zap.Logger
}

// NewLogEndpoint builds the logging stand-in.
func NewLogEndpoint(logger *zap.Logger) *LogEndpoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEndpoint{logger: logger}
}

// Push implements Endpoint.
func (e *LogEndpoint) Push(_ context.Context, entry models.SyncQueueEntry) error {
	e.logger.Info("sync entry acknowledged locally",
		zap.String("entry_id", entry.ID),
		zap.String("op", string(entry.Op)),
		zap.String("collection", entry.Collection),
	)
	return nil
}
