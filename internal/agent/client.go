// Package agent implements the extension-side client: an HTTP client for
// the backend, and a supervisor that keeps a local timer runner reconciled
// with the server while making blocking decisions offline.
package agent

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

	"focusflow/internal/model"
	"focusflow/internal/timer"
)

// ErrUnauthorized means the bearer token was rejected. The supervisor keeps
// serving its cached blocklist and timer state rather than failing closed.
var ErrUnauthorized = errors.New("unauthorized")

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a short-lived web token. Used only by the
// token helper command to mint an extension token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ExtensionToken mints a long-lived token using the current bearer token.
func (c *Client) ExtensionToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/extension/token", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// TimerStatus pulls the sync protocol response.
func (c *Client) TimerStatus(ctx context.Context) (*model.TimerStatus, error) {
	var status model.TimerStatus
	if err := c.do(ctx, http.MethodGet, "/api/extension/timer-status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) BlockedSites(ctx context.Context) ([]model.BlockedSite, error) {
	var sites []model.BlockedSite
	if err := c.do(ctx, http.MethodGet, "/api/extension/blocked-sites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (c *Client) NotificationSettings(ctx context.Context) (*model.NotificationSettings, error) {
	var settings model.NotificationSettings
	if err := c.do(ctx, http.MethodGet, "/api/notification-settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// StartSession implements timer.SessionWriter.
func (c *Client) StartSession(ctx context.Context, req timer.StartSessionRequest) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]interface{}{
		"startTime":        req.StartTime,
		"plannedDuration":  req.PlannedDuration,
		"pomodorosPlanned": req.PomodorosPlanned,
		"task":             req.Task,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordPomodoro implements timer.SessionWriter. The server increments the
// stored count by one per call.
func (c *Client) RecordPomodoro(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPatch, "/api/sessions/"+sessionID, map[string]interface{}{
		"pomodorosCompleted": 1,
	}, nil)
}

// CompleteSession implements timer.SessionWriter.
func (c *Client) CompleteSession(ctx context.Context, sessionID string, actualSeconds int) error {
	now := time.Now().UTC()
	return c.do(ctx, http.MethodPatch, "/api/sessions/"+sessionID, map[string]interface{}{
		"endTime":        now,
		"actualDuration": actualSeconds,
		"isCompleted":    true,
	}, nil)
}

// AbortSession implements timer.SessionWriter.
func (c *Client) AbortSession(ctx context.Context, sessionID, reason string, actualSeconds int) error {
	now := time.Now().UTC()
	return c.do(ctx, http.MethodPatch, "/api/sessions/"+sessionID, map[string]interface{}{
		"endTime":        now,
		"actualDuration": actualSeconds,
		"isCompleted":    false,
		"abortReason":    reason,
	}, nil)
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return wireError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// wireError maps API error codes back onto the sentinel errors the timer
// runner reacts to.
func wireError(status int, raw []byte) error {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("server returned status %d", status)
	}

	code := envelope.Error.Code
	message := envelope.Error.Message
	switch code {
	case "active_session_exists":
		return fmt.Errorf("%s: %w", message, timer.ErrSessionConflict)
	case "already_finalized":
		return fmt.Errorf("%s: %w", message, timer.ErrSessionFinalized)
	case "session_not_found":
		return fmt.Errorf("%s: %w", message, timer.ErrSessionNotFound)
	case "unauthorized":
		return fmt.Errorf("%s: %w", message, ErrUnauthorized)
	default:
		return fmt.Errorf("%s (%s)", message, code)
	}
}
