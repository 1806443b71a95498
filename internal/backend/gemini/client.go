// Package gemini implements service.Generator against the Gemini
// generateContent endpoint.
package gemini

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
	"google.golang.org/api/googleapi"

	"caretaker/internal/config"
	"caretaker/internal/service"
)

// DefaultTimeout is used when the configured timeout is zero.
const DefaultTimeout = 30 * time.Second

// Client sends single-shot prompts to {baseURL}/{model}?key={apiKey}.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	log      zerolog.Logger
}

// New creates a provider client from cfg.
func New(cfg *config.Config) *Client {
	return NewWithHTTPClient(http.DefaultClient, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.Timeout, cfg.Log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL, model, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:     httpClient,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(model, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
		log:      log,
	}
}

// Generate posts prompt and returns candidates[0].content.parts[0].text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "generate"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &service.NetworkError{Op: op, Err: err}
	}

	target := c.endpoint + "?" + url.Values{"key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", &service.NetworkError{Op: op, Err: redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Str("endpoint", c.endpoint).Int("prompt_bytes", len(prompt)).Msg("provider request")

	resp, err := c.http.Do(req)
	if err != nil {
		err = redact(err)
		c.log.Warn().Err(err).Msg("provider request failed")
		return "", &service.NetworkError{Op: op, Err: wrapError(err)}
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		c.log.Warn().Int("status", resp.StatusCode).Msg("provider rejected request")
		return "", &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: wrapError(err)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: wrapError(err)}
	}
	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &service.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	text, ok := out.firstText()
	if !ok {
		return "", service.ErrNoSuggestion
	}
	return text, nil
}

// redact drops the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// wrapError wraps transport and API errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			if apiErr.Message != "" {
				return fmt.Errorf("provider rejected request (check gemini.api_key): %s", apiErr.Message)
			}
			return fmt.Errorf("provider rejected request (check gemini.api_key)")
		case http.StatusTooManyRequests:
			return fmt.Errorf("provider rate limit exceeded")
		}
	}
	return err
}
