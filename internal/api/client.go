package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transient failures (network, timeout, server-side) may be retried;
// permanent ones (the request itself is bad) must not.
var (
	ErrTransient = errors.New("transient session write failure")
	ErrPermanent = errors.New("permanent session write failure")
)

// Record is the session write contract: the endpoint treats SessionKey as
// an idempotency token, so repeating a key must not create a duplicate.
type Record struct {
	KasinaType      string `json:"kasinaType"`
	DurationSeconds int    `json:"durationSeconds"`
	StartedAt       string `json:"startedAt"`
	SessionKey      string `json:"sessionKey"`
}

// Client writes session records to the kasina session-storage endpoint.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

// New creates a client. timeout bounds each write request; it comes from
// configuration, never hardcoded by callers.
func New(baseURL, clientID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: timeout},
	}
}

// WriteSession posts one session record. A 409 means the key was already
// recorded, which is success for an idempotent write.
func (c *Client) WriteSession(ctx context.Context, rec Record) error {
	if c.baseURL == "" {
		return fmt.Errorf("no server configured: %w", ErrTransient)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", ErrPermanent)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build session request: %w", ErrPermanent)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Kasina-Client", c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post session %q: %v: %w", rec.SessionKey, err, ErrTransient)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// Already recorded under this key.
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("post session %q: status %d: %w", rec.SessionKey, resp.StatusCode, ErrPermanent)
	default:
		return fmt.Errorf("post session %q: status %d: %w", rec.SessionKey, resp.StatusCode, ErrTransient)
	}
}
