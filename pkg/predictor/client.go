package predictor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Browser User-Agent: several predictor sites reject obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/107.0.0.0 Safari/537.36"

// Client is the shared HTTP helper for web adapters. It sets the common
// headers, keeps one cookie jar per predictor (login sessions) and
// classifies the failure modes into the package's typed errors.
type Client struct {
	http *http.Client
}

// NewClient builds a client with the given timeout; zero means 30 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	// cookiejar.New with default options never fails.
	jar, _ := cookiejar.New(nil)
	return &Client{http: &http.Client{Timeout: timeout, Jar: jar}}
}

// Get fetches a URL and returns the response body. Network failures come
// back as *TransportError, non-2xx statuses as plain errors.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	return c.do(ctx, http.MethodGet, rawURL, "", nil)
}

// PostForm submits a URL-encoded form and returns the response body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (string, error) {
	return c.do(ctx, http.MethodPost, rawURL,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// Head probes a URL, reporting only reachability. Used by Ping facets.
func (c *Client) Head(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server answered ping with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: method + " " + rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "read " + rawURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return string(data), nil
}
