package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/otso2008/OddsBot/internal/api"
	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
	"github.com/otso2008/OddsBot/internal/pkg/storage"
)

type mockStore struct {
	failPing bool

	lastMatchKey string
	lastSport    string
	lastMinEV    float64
	lastMinROI   float64
	lastLimit    int
	lastOffset   int
}

func (m *mockStore) SaveMatches(_ context.Context, _ []*models.Match) error        { return nil }
func (m *mockStore) SaveFairQuotes(_ context.Context, _ []models.FairQuote) error  { return nil }
func (m *mockStore) SaveArbOpportunities(_ context.Context, _ []models.ArbitrageOpportunity) error {
	return nil
}
func (m *mockStore) SaveEVOpportunities(_ context.Context, _ []models.EVOpportunity, _ bool) error {
	return nil
}
func (m *mockStore) SaveClosingQuotes(_ context.Context, _ []models.ClosingQuote) error { return nil }
func (m *mockStore) SaveClosingEvals(_ context.Context, _ []models.ClosingEval) error   { return nil }

func (m *mockStore) PendingClosingEvals(_ context.Context, _ time.Time) ([]storage.PendingEval, error) {
	return nil, nil
}

func (m *mockStore) ListMatches(_ context.Context, sport string, limit, offset int) ([]storage.MatchRecord, error) {
	m.lastSport, m.lastLimit, m.lastOffset = sport, limit, offset
	return []storage.MatchRecord{{
		ID:        1,
		Key:       "soccer_epl|arsenal|chelsea|2026-09-01T15:00:00Z",
		Sport:     "soccer_epl",
		Home:      "Arsenal",
		Away:      "Chelsea",
		StartTime: time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
	}}, nil
}

func (m *mockStore) ListOdds(_ context.Context, matchKey string) ([]storage.OddsRecord, error) {
	m.lastMatchKey = matchKey
	return []storage.OddsRecord{{
		MatchKey:   matchKey,
		Bookmaker:  "Pinnacle",
		MarketCode: models.MarketH2H,
		Outcome:    models.OutcomeHome,
		Odds:       2.00,
	}}, nil
}

func (m *mockStore) ListFairQuotes(_ context.Context, matchKey string) ([]storage.StoredFair, error) {
	m.lastMatchKey = matchKey
	return []storage.StoredFair{{FairQuote: models.FairQuote{
		MatchKey:        matchKey,
		MarketCode:      models.MarketH2H,
		Outcome:         models.OutcomeHome,
		ReferenceBook:   "Pinnacle",
		FairProbability: 0.5,
		NoVigOdds:       2.0,
	}}}, nil
}

func (m *mockStore) ListEVOpportunities(_ context.Context, minEV float64, limit, offset int) ([]storage.StoredEV, error) {
	m.lastMinEV, m.lastLimit, m.lastOffset = minEV, limit, offset
	return []storage.StoredEV{{EVOpportunity: models.EVOpportunity{
		MatchName: "Arsenal vs Chelsea",
		Bookmaker: "Betsson",
		EVPercent: 6.21,
	}}}, nil
}

func (m *mockStore) ListArbOpportunities(_ context.Context, minROI float64, limit, offset int) ([]storage.StoredArb, error) {
	m.lastMinROI, m.lastLimit, m.lastOffset = minROI, limit, offset
	return []storage.StoredArb{{ArbitrageOpportunity: models.ArbitrageOpportunity{
		MatchName:  "Arsenal vs Chelsea",
		MarketCode: models.MarketH2H,
		ROIPercent: 3.73,
	}}}, nil
}

func (m *mockStore) Ping(_ context.Context) error {
	if m.failPing {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

type mockSnapshot struct {
	matches map[string]*models.Match
	info    storage.CycleInfo
}

func (m *mockSnapshot) Snapshot(_ context.Context) (map[string]*models.Match, error) {
	return m.matches, nil
}

func (m *mockSnapshot) CycleInfo(_ context.Context) (storage.CycleInfo, error) {
	return m.info, nil
}

func newTestServer(store storage.Store, cache api.SnapshotSource, keys []string, perMinute int) *api.Server {
	cfg := &config.Config{}
	cfg.API.Port = 8080
	cfg.API.APIKeys = keys
	cfg.API.RateLimitPerMinute = perMinute
	return api.NewServer(cfg, store, cache)
}

func doRequest(t *testing.T, srv *api.Server, path, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthIsOpenWhileV1RequiresKey(t *testing.T) {
	srv := newTestServer(&mockStore{}, nil, []string{"secret"}, 60)

	if w := doRequest(t, srv, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200 without a key", w.Code)
	}
	if w := doRequest(t, srv, "/v1/matches", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("GET /v1/matches without key = %d, want 401", w.Code)
	}
	if w := doRequest(t, srv, "/v1/matches", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("GET /v1/matches with wrong key = %d, want 401", w.Code)
	}

	w := doRequest(t, srv, "/v1/matches", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/matches with key = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	srv := newTestServer(&mockStore{failPing: true}, nil, nil, 60)

	if w := doRequest(t, srv, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health with dead database = %d, want 503", w.Code)
	}
}

func TestRateLimitPerKey(t *testing.T) {
	srv := newTestServer(&mockStore{}, nil, []string{"secret"}, 2)

	for i := 0; i < 2; i++ {
		if w := doRequest(t, srv, "/v1/matches", "secret"); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, w.Code)
		}
	}

	w := doRequest(t, srv, "/v1/matches", "secret")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request over limit = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
}

func TestCurrentMatchesServedFromSnapshot(t *testing.T) {
	start := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	key := models.MatchKey("soccer_epl", "Arsenal", "Chelsea", start)
	cache := &mockSnapshot{
		matches: map[string]*models.Match{key: {
			Key:       key,
			Sport:     "soccer_epl",
			Home:      "Arsenal",
			Away:      "Chelsea",
			StartTime: start,
		}},
		info: storage.CycleInfo{Matches: 1},
	}
	srv := newTestServer(&mockStore{}, cache, nil, 60)

	w := doRequest(t, srv, "/v1/matches/current", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/matches/current = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
	matches, ok := body["matches"].(map[string]interface{})
	if !ok || matches[key] == nil {
		t.Errorf("snapshot body missing match %q", key)
	}
}

func TestCurrentMatchesWithoutSnapshot(t *testing.T) {
	srv := newTestServer(&mockStore{}, &mockSnapshot{}, nil, 60)
	if w := doRequest(t, srv, "/v1/matches/current", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET /v1/matches/current with empty cache = %d, want 404", w.Code)
	}

	srv = newTestServer(&mockStore{}, nil, nil, 60)
	if w := doRequest(t, srv, "/v1/matches/current", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /v1/matches/current without cache = %d, want 503", w.Code)
	}
}

func TestOddsRequiresMatchKey(t *testing.T) {
	store := &mockStore{}
	srv := newTestServer(store, nil, nil, 60)

	if w := doRequest(t, srv, "/v1/odds", ""); w.Code != http.StatusBadRequest {
		t.Errorf("GET /v1/odds without match_key = %d, want 400", w.Code)
	}

	w := doRequest(t, srv, "/v1/odds?match_key=some|key", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/odds with match_key = %d, want 200", w.Code)
	}
	if store.lastMatchKey != "some|key" {
		t.Errorf("store queried with %q, want some|key", store.lastMatchKey)
	}
}

func TestEVQueryParamsForwarded(t *testing.T) {
	store := &mockStore{}
	srv := newTestServer(store, nil, nil, 60)

	w := doRequest(t, srv, "/v1/ev?min_ev=4.5&limit=10&offset=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/ev = %d, want 200", w.Code)
	}
	if store.lastMinEV != 4.5 || store.lastLimit != 10 || store.lastOffset != 5 {
		t.Errorf("store queried with minEV=%v limit=%d offset=%d, want 4.5/10/5",
			store.lastMinEV, store.lastLimit, store.lastOffset)
	}
	if body := decodeBody(t, w); body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestNegativeOffsetClamped(t *testing.T) {
	store := &mockStore{}
	srv := newTestServer(store, nil, nil, 60)

	w := doRequest(t, srv, "/v1/ev?offset=-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/ev = %d, want 200", w.Code)
	}
	if store.lastOffset != 0 {
		t.Errorf("offset forwarded = %d, want clamped to 0", store.lastOffset)
	}
}

func TestArbsCapsPageSize(t *testing.T) {
	store := &mockStore{}
	srv := newTestServer(store, nil, nil, 60)

	w := doRequest(t, srv, "/v1/arbs?limit=9999&min_roi=1.5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/arbs = %d, want 200", w.Code)
	}
	if store.lastLimit != 500 {
		t.Errorf("limit forwarded = %d, want capped at 500", store.lastLimit)
	}
	if store.lastMinROI != 1.5 {
		t.Errorf("min_roi forwarded = %v, want 1.5", store.lastMinROI)
	}
}
