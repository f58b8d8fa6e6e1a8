package coolbet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// chromeMu serializes Chrome usage so only one instance runs at a time.
var chromeMu sync.Mutex

const resolveUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// resolveMirror follows the mirror entry page to the live Coolbet host.
// Plain HTTP redirects are tried first; entry pages that bounce through
// JavaScript need a headless browser.
func resolveMirror(mirrorURL string, timeout time.Duration) (string, error) {
	if timeout < 60*time.Second {
		timeout = 60 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 30 * time.Second}).DialContext

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return nil
		},
	}

	req, err := http.NewRequest(http.MethodGet, mirrorURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", resolveUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Info("Coolbet mirror HTTP fetch failed, trying headless browser", "error", err)
		return resolveMirrorWithJS(mirrorURL, timeout)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	if finalURL != mirrorURL {
		slog.Info("Resolved Coolbet mirror", "from", mirrorURL, "to", finalURL, "method", "redirect")
		return finalURL, nil
	}

	// Same URL back: check whether the page redirects via script.
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err == nil {
			s := string(body)
			if strings.Contains(s, "window.location") || strings.Contains(s, "location.href") || strings.Contains(s, "<script") {
				return resolveMirrorWithJS(mirrorURL, timeout)
			}
		}
	}

	return finalURL, nil
}

// resolveMirrorWithJS loads the mirror page in headless Chrome and reads the
// URL the scripts land on.
func resolveMirrorWithJS(mirrorURL string, timeout time.Duration) (string, error) {
	chromeMu.Lock()
	defer chromeMu.Unlock()

	chromeDir, err := os.MkdirTemp("", "coolbet_chrome_")
	if err != nil {
		return "", fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(chromeDir)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(chromeDir),
		chromedp.UserAgent(resolveUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		if os.Getenv("COOLBET_DEBUG") == "1" {
			slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
		}
	}))
	defer cancel()

	var finalURL string
	err = chromedp.Run(ctx,
		chromedp.Navigate(mirrorURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigation: %w", err)
	}

	if finalURL == "" || finalURL == mirrorURL {
		// Give slow entry pages one more chance to bounce.
		err = chromedp.Run(ctx,
			chromedp.Sleep(5*time.Second),
			chromedp.Location(&finalURL),
		)
		if err != nil {
			return "", fmt.Errorf("chromedp wait: %w", err)
		}
	}

	if finalURL == "" {
		return "", fmt.Errorf("mirror page produced no destination URL")
	}

	slog.Info("Resolved Coolbet mirror", "from", mirrorURL, "to", finalURL, "method", "headless browser")
	return finalURL, nil
}

// normalizeResolvedBaseURL reduces a full landing URL to scheme://host,
// e.g. https://www.coolbet.com/en/sports?x=1 -> https://www.coolbet.com.
func normalizeResolvedBaseURL(resolved string) string {
	u, err := url.Parse(resolved)
	if err != nil {
		return resolved
	}
	host := u.Hostname()
	port := u.Port()
	if port != "" && port != "80" && port != "443" {
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return u.Scheme + "://" + host
}
