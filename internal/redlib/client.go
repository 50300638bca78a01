package redlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent = "threadfold/dev"
	maxBodyBytes     = 8 << 20
	maxErrorBody     = 4096
)

var ErrBodyTooLarge = errors.New("response body exceeds limit")

// StatusError is a response that arrived with a non-2xx status. Its
// message is what the thread view shows on a failed placeholder. Body holds
// at most the first 4KB of the response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		text = "Unknown Status"
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, text)
}

// Client fetches redlib pages as raw markup.
type Client struct {
	userAgent string
	http      *http.Client
}

func NewClient(userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &Client{userAgent: userAgent, http: httpClient}
}

// Fetch returns the body of pageURL. A challenge page comes back either as
// ordinary markup or inside a *StatusError; spotting it is up to the caller.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := c.newRequest(ctx, pageURL)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		prefix, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, URL: pageURL, Body: string(prefix)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	if len(body) > maxBodyBytes {
		return "", fmt.Errorf("read %s: %w", pageURL, ErrBodyTooLarge)
	}
	return string(body), nil
}

func (c *Client) newRequest(ctx context.Context, pageURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}
