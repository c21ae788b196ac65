package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/session"
)

// StatusError is returned for responses the client cannot interpret.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edge api: status %d: %s", e.Code, e.Body)
}

// Client talks to the Edge device API: session listing and metadata, report
// job submit and poll, and job cancellation.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for baseURL. A zero timeout uses 30 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ListSessions returns the recordings stored on the device.
func (c *Client) ListSessions(ctx context.Context) ([]session.Summary, error) {
	var list []session.Summary
	if err := c.getJSON(ctx, "/sessions", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetSession returns the metadata of one recording.
func (c *Client) GetSession(ctx context.Context, id string) (*session.RawSession, error) {
	var raw session.RawSession
	if err := c.getJSON(ctx, "/sessions/"+url.PathEscape(id), nil, &raw); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	if raw.ID == "" {
		raw.ID = id
	}
	return &raw, nil
}

// SubmitReport posts the job body. The response body is decoded for every
// non-5xx status since pending jobs may be reported as not found.
func (c *Client) SubmitReport(ctx context.Context, gameID string, req report.Request) (*report.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report request: %w", err)
	}

	q := url.Values{}
	q.Set("sleep", "false")
	if gameID != "" {
		q.Set("gameId", gameID)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/report", q, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(raw)}
	}

	var out report.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(raw)}
	}
	c.logger.Debug("report response", "status", resp.StatusCode, "game_id", out.GameID, "message", out.Message, "complete", out.IsComplete())
	return &out, nil
}

// CancelReport asks the device to drop a running job.
func (c *Client) CancelReport(ctx context.Context, gameID string) error {
	q := url.Values{}
	q.Set("gameId", gameID)
	req, err := c.newRequest(ctx, http.MethodGet, "/cancel", q, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, q, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: truncate(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func truncate(b []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
