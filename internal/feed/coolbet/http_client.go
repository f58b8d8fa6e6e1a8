package coolbet

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const defaultBaseURL = "https://www.coolbet.com"

type Client struct {
	baseURL   string
	mirrorURL string
	userAgent string

	httpClient *http.Client

	resolveMu       sync.Mutex
	resolvedURL     string
	lastResolveTime time.Time
	resolveInterval time.Duration
	resolveTimeout  time.Duration
}

func NewClient(baseURL, mirrorURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if userAgent == "" {
		userAgent = resolveUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Accept-Encoding is sent explicitly and bodies decoded in readBodyDecode.
	transport.DisableCompression = true

	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		mirrorURL:       mirrorURL,
		userAgent:       userAgent,
		httpClient:      &http.Client{Timeout: timeout, Transport: transport},
		resolveInterval: 2 * time.Hour,
		resolveTimeout:  timeout,
	}
}

// GetPrematch fetches the open prematch matches for a sport slug.
func (c *Client) GetPrematch(ctx context.Context, sportSlug string) ([]Match, error) {
	base := c.resolvedBaseURL()

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	u.Path = fmt.Sprintf("/s/sbgate/odds/%s/prematch", sportSlug)

	body, err := c.doRequest(ctx, u.String())
	if err != nil {
		if shouldReResolve(err, 0) {
			c.clearResolvedURL()
		}
		return nil, err
	}

	var resp MatchListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal match list: %w", err)
	}
	return resp.Matches, nil
}

// resolvedBaseURL returns the live host, going through the mirror when one
// is configured. A cached resolution is reused for resolveInterval as long
// as the host still answers.
func (c *Client) resolvedBaseURL() string {
	if c.mirrorURL == "" {
		return c.baseURL
	}

	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()

	if c.resolvedURL != "" {
		if time.Since(c.lastResolveTime) < c.resolveInterval {
			return c.resolvedURL
		}
		if c.checkURLHealth(c.resolvedURL) {
			c.lastResolveTime = time.Now()
			return c.resolvedURL
		}
		slog.Info("Coolbet cached host stopped answering, re-resolving mirror", "cached", c.resolvedURL)
	}

	resolved, err := resolveMirror(c.mirrorURL, c.resolveTimeout)
	if err != nil {
		if c.resolvedURL != "" {
			slog.Warn("Coolbet mirror re-resolve failed, keeping cached host", "error", err, "cached", c.resolvedURL)
			return c.resolvedURL
		}
		slog.Warn("Coolbet mirror resolve failed, using configured base URL", "error", err, "base", c.baseURL)
		return c.baseURL
	}

	c.resolvedURL = normalizeResolvedBaseURL(resolved)
	c.lastResolveTime = time.Now()
	return c.resolvedURL
}

func (c *Client) clearResolvedURL() {
	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()
	c.resolvedURL = ""
}

func (c *Client) checkURLHealth(urlStr string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, urlStr, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func shouldReResolve(err error, statusCode int) bool {
	if err != nil {
		s := err.Error()
		if strings.Contains(s, "connection refused") ||
			strings.Contains(s, "no such host") ||
			strings.Contains(s, "timeout") ||
			strings.Contains(s, "network is unreachable") {
			return true
		}
	}
	return statusCode == http.StatusBadGateway || statusCode == http.StatusServiceUnavailable
}

func (c *Client) doRequest(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		preview := string(b)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		if shouldReResolve(nil, resp.StatusCode) {
			c.clearResolvedURL()
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, preview)
	}

	return readBodyDecode(resp)
}

// readBodyDecode decompresses the body based on Content-Encoding.
func readBodyDecode(resp *http.Response) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(resp.Body))
	case strings.Contains(enc, "zstd"):
		r, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "gzip"):
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return io.ReadAll(resp.Body)
	}
}
