package kambi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://eu-offering-api.kambicdn.com"

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// GetListView fetches the prematch list view for one brand and sport path.
// GET /offering/v2018/{brand}/listView/{path}.json?lang=en_GB&market=GB
func (c *Client) GetListView(ctx context.Context, brand, path string) (*ListViewResponse, error) {
	u := fmt.Sprintf("%s/offering/v2018/%s/listView/%s.json?lang=en_GB&market=GB&useCombined=true",
		c.baseURL, brand, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	// Kambi answers 404 for sport paths a brand does not offer.
	if resp.StatusCode == http.StatusNotFound {
		return &ListViewResponse{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out ListViewResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode list view: %w", err)
	}
	return &out, nil
}
