package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	regions    string
	markets    string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, regions, markets string, timeout time.Duration) *Client {
	// Allow env override to avoid committing the key into configs.
	if apiKey == "" {
		apiKey = os.Getenv("ODDS_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com"
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		regions:    regions,
		markets:    markets,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetEvents fetches the fixture list for a sport, without odds. Events that
// never show up in the odds payload still enter the pipeline this way and
// are counted when normalization drops them.
func (c *Client) GetEvents(ctx context.Context, sport string) ([]Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)

	var out []Event
	if err := c.getJSON(ctx, fmt.Sprintf("/v4/sports/%s/events/", sport), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOdds fetches current odds for a sport across all configured regions.
func (c *Client) GetOdds(ctx context.Context, sport string) ([]Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("markets", c.markets)
	q.Set("oddsFormat", "decimal")
	q.Set("regions", c.regions)

	var out []Event
	if err := c.getJSON(ctx, fmt.Sprintf("/v4/sports/%s/odds/", sport), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("odds api key is not configured")
	}
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	// The API reports quota usage in headers; worth keeping an eye on since
	// every region+market combination costs credits.
	if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
		slog.Debug("Odds API quota", "remaining", remaining, "used", resp.Header.Get("X-Requests-Used"))
	}

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		preview := string(b)
		if len(preview) > 300 {
			preview = preview[:300] + "..."
		}
		return fmt.Errorf("unexpected status %d for %s: %s", resp.StatusCode, path, preview)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
