// Package restapi implements service.TaskStore over a JSON REST task store.
//
//	GET    {base}       list
//	POST   {base}       create
//	PUT    {base}/{id}  update
//	DELETE {base}/{id}  delete
package restapi

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

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"caretaker/internal/config"
	"caretaker/internal/service"
)

// DefaultTimeout is used when the configured timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client implements service.TaskStore over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a store client from cfg.
// A configured store token is sent as an OAuth2 bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	httpClient := http.DefaultClient
	if cfg.Store.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Store.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return NewWithHTTPClient(httpClient, cfg.Store.BaseURL, cfg.Store.Timeout, cfg.Log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid store base url: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log,
	}, nil
}

// ListTasks returns every task in store order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, c.baseURL, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask posts a new task and returns the stored value.
func (c *Client) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	var created service.Task
	if err := c.do(ctx, "create task", http.MethodPost, c.baseURL, task, &created); err != nil {
		return service.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces a task and returns the stored value.
func (c *Client) UpdateTask(ctx context.Context, task service.Task) (service.Task, error) {
	var updated service.Task
	if err := c.do(ctx, "update task", http.MethodPut, c.taskURL(task.ID), task, &updated); err != nil {
		return service.Task{}, err
	}
	return updated, nil
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, c.taskURL(id), nil, nil)
}

func (c *Client) taskURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do sends one JSON request. Every failure comes back as *service.NetworkError.
func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &service.NetworkError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return &service.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("op", op).Str("method", method).Str("url", target).Msg("store request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("store request failed")
		return &service.NetworkError{Op: op, Err: wrapError(err)}
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("store rejected request")
		return &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: wrapError(err)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: wrapError(err)}
	}
	// Some stores answer an empty list with an empty body.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// wrapError wraps transport and API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("access denied (check store.token)")
		}
	}

	return err
}
