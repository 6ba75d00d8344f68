package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentics-ai/kansa/internal/signal"
)

// Sink receives decision signals. The collector client is the production
// implementation; tests swap in fakes.
type Sink interface {
	Emit(ctx context.Context, sig signal.Signal) error
	EmitBatch(ctx context.Context, batch signal.Batch) error
}

// Collector posts signals to the central signal collector over HTTP.
type Collector struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCollector creates a collector client. An empty apiKey sends no
// Authorization header.
func NewCollector(baseURL, apiKey string) *Collector {
	return &Collector{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Emit posts one signal.
func (c *Collector) Emit(ctx context.Context, sig signal.Signal) error {
	return c.post(ctx, c.baseURL+"/api/v1/signals", sig)
}

// EmitBatch posts a batch of signals.
func (c *Collector) EmitBatch(ctx context.Context, batch signal.Batch) error {
	return c.post(ctx, c.baseURL+"/api/v1/signals/batch", batch)
}

func (c *Collector) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("emitter: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("emitter: post signal: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("emitter: collector returned status %d", resp.StatusCode)
	}
	return nil
}
