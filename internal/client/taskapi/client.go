// Package taskapi is the HTTP client the reminder process uses to read the
// signed-in user's tasks.
package taskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskfyer/internal/reminders"
	"taskfyer/internal/session"
)

const defaultTimeout = 15 * time.Second

// ErrUnauthorized means the session token was rejected.
var ErrUnauthorized = errors.New("session rejected by server")

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New builds a client for server (e.g. http://localhost:8000) authenticating
// with the session token.
func New(server, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(server, "/") + "/api/v1",
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type taskDTO struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	DueDate   json.RawMessage `json:"dueDate"`
	Completed bool            `json:"completed"`
}

type tasksResponse struct {
	Length int       `json:"length"`
	Tasks  []taskDTO `json:"tasks"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Tasks fetches the current task set.
func (c *Client) Tasks(ctx context.Context) ([]reminders.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: c.token})
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("api error (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return nil, fmt.Errorf("api error (status %d)", resp.StatusCode)
	}

	var out tasksResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	ts := make([]reminders.Task, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		ts = append(ts, reminders.Task{
			ID:        strconv.FormatUint(uint64(t.ID), 10),
			Title:     t.Title,
			DueDate:   rawString(t.DueDate),
			Completed: t.Completed,
		})
	}
	return ts, nil
}

// rawString unquotes a JSON string and passes anything else through as-is,
// leaving validation to the engine.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
