package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
	defaultFeedTimeout         = 5 * time.Second
)

// Feed fetches board lines from HTTP endpoints.
//
// A response is read as lines of plain text, or as a JSON array of strings
// when served as application/json. Bodies are limited to 1MB.
type Feed struct {
	httpClient *http.Client
}

// NewFeed creates a [Feed] with a pooled transport. Timeouts are applied per
// request in [Feed.Lines].
func NewFeed() *Feed {
	return &Feed{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Lines GETs url and returns its content as lines. A non-2xx status is an
// error. A zero timeout uses 5 seconds.
func (f *Feed) Lines(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "application/json" {
		var lines []string
		if err := json.Unmarshal(body, &lines); err != nil {
			return nil, fmt.Errorf("decode json lines: %w", err)
		}
		return lines, nil
	}
	return SplitLines(body), nil
}

// Close closes idle connections. The feed remains usable. Safe on a nil
// receiver.
func (f *Feed) Close() {
	if f == nil || f.httpClient == nil {
		return
	}
	if transport, ok := f.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// SplitLines splits text on newlines, dropping carriage returns and a single
// trailing empty line.
func SplitLines(body []byte) []string {
	if len(body) == 0 {
		return []string{}
	}
	body = bytes.TrimSuffix(body, []byte("\n"))
	parts := strings.Split(string(body), "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
