package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/otso2008/OddsBot/internal/pkg/config"
	"github.com/otso2008/OddsBot/internal/pkg/models"
)

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// PostgresStore persists matches, quotes and detection results. Match and
// bookmaker ids are cached in memory, the hot path being two lookups per
// stored quote.
type PostgresStore struct {
	db *sql.DB

	mu           sync.Mutex
	matchIDs     map[string]int64
	bookmakerIDs map[string]int64
}

// NewPostgresStore opens the connection, verifies it and creates the schema.
func NewPostgresStore(cfg *config.PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{
		db:           db,
		matchIDs:     make(map[string]int64),
		bookmakerIDs: make(map[string]int64),
	}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL storage initialized")
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS bookmakers (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		country VARCHAR(10) NOT NULL DEFAULT '',
		short_code VARCHAR(10) NOT NULL DEFAULT '',
		sharp BOOLEAN NOT NULL DEFAULT FALSE,
		reliability INTEGER NOT NULL DEFAULT 70
	);

	CREATE TABLE IF NOT EXISTS matches (
		id SERIAL PRIMARY KEY,
		match_key VARCHAR(500) NOT NULL UNIQUE,
		sport VARCHAR(100) NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_matches_start_time ON matches(start_time);
	CREATE INDEX IF NOT EXISTS idx_matches_sport ON matches(sport);

	CREATE TABLE IF NOT EXISTS current_odds (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		bookmaker_id INTEGER NOT NULL REFERENCES bookmakers(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		odds DECIMAL(10, 4) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (match_id, bookmaker_id, market_code, outcome)
	);

	CREATE TABLE IF NOT EXISTS odds_history (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id),
		bookmaker_id INTEGER NOT NULL REFERENCES bookmakers(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		odds DECIMAL(10, 4) NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_odds_history_match ON odds_history(match_id, market_code, recorded_at);

	CREATE TABLE IF NOT EXISTS fair_probs (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		reference_book VARCHAR(100) NOT NULL,
		fair_probability DECIMAL(12, 8) NOT NULL,
		no_vig_odds DECIMAL(10, 4) NOT NULL,
		margin DECIMAL(12, 8) NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL,
		UNIQUE (match_id, market_code, outcome, reference_book)
	);
	CREATE INDEX IF NOT EXISTS idx_fair_probs_match ON fair_probs(match_id, computed_at);

	CREATE TABLE IF NOT EXISTS ev_results (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		bookmaker VARCHAR(100) NOT NULL,
		offered_odds DECIMAL(10, 4) NOT NULL,
		reference_book VARCHAR(100) NOT NULL,
		reference_odds DECIMAL(10, 4) NOT NULL,
		fair_probability DECIMAL(12, 8) NOT NULL,
		ev_percent DECIMAL(10, 4) NOT NULL,
		high_value BOOLEAN NOT NULL DEFAULT FALSE,
		detected_at TIMESTAMPTZ NOT NULL,
		UNIQUE (match_id, market_code, outcome, bookmaker)
	);
	CREATE INDEX IF NOT EXISTS idx_ev_results_detected ON ev_results(detected_at);
	CREATE INDEX IF NOT EXISTS idx_ev_results_high ON ev_results(match_id, market_code, outcome) WHERE high_value;

	CREATE TABLE IF NOT EXISTS arb_results (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id),
		market_code VARCHAR(100) NOT NULL,
		inv_sum DECIMAL(12, 8) NOT NULL,
		roi_percent DECIMAL(10, 4) NOT NULL,
		total_stake DECIMAL(12, 2) NOT NULL,
		profit DECIMAL(12, 4) NOT NULL,
		legs JSONB NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL,
		UNIQUE (match_id, market_code)
	);
	CREATE INDEX IF NOT EXISTS idx_arb_results_detected ON arb_results(detected_at);

	CREATE TABLE IF NOT EXISTS closing_odds (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		bookmaker VARCHAR(100) NOT NULL,
		odds DECIMAL(10, 4) NOT NULL,
		no_vig_odds DECIMAL(10, 4) NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (match_id, market_code, outcome)
	);

	CREATE TABLE IF NOT EXISTS ev_closing_results (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id),
		market_code VARCHAR(100) NOT NULL,
		outcome VARCHAR(200) NOT NULL,
		bookmaker VARCHAR(100) NOT NULL,
		offered_odds DECIMAL(10, 4) NOT NULL,
		ev_percent DECIMAL(10, 4) NOT NULL,
		closing_no_vig DECIMAL(10, 4) NOT NULL,
		beat_closing BOOLEAN NOT NULL,
		evaluated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (match_id, market_code, outcome, bookmaker)
	);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// bookmakerID returns the id for a bookmaker name, creating the row on
// first sight.
func (s *PostgresStore) bookmakerID(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	id, ok := s.bookmakerIDs[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	meta := models.BookmakerMeta(name)
	query := `
	INSERT INTO bookmakers (name, country, short_code, sharp, reliability)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO UPDATE SET
		country = EXCLUDED.country,
		short_code = EXCLUDED.short_code,
		sharp = EXCLUDED.sharp,
		reliability = EXCLUDED.reliability
	RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		name, meta.Country, meta.ShortCode, meta.Sharp, meta.Reliability,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create bookmaker %q: %w", name, err)
	}

	s.mu.Lock()
	s.bookmakerIDs[name] = id
	s.mu.Unlock()
	return id, nil
}

// matchID upserts the match row and returns its id. Start time is refreshed
// on conflict since feeds occasionally move kickoffs.
func (s *PostgresStore) matchID(ctx context.Context, match *models.Match) (int64, error) {
	s.mu.Lock()
	id, ok := s.matchIDs[match.Key]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	query := `
	INSERT INTO matches (match_key, sport, home_team, away_team, start_time)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (match_key) DO UPDATE SET start_time = EXCLUDED.start_time
	RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		match.Key, match.Sport, match.Home, match.Away, match.StartTime.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create match %q: %w", match.Key, err)
	}

	s.mu.Lock()
	s.matchIDs[match.Key] = id
	s.mu.Unlock()
	return id, nil
}

// matchIDByKey resolves an already-stored match key to its id.
func (s *PostgresStore) matchIDByKey(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	id, ok := s.matchIDs[key]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	err := s.db.QueryRowContext(ctx, `SELECT id FROM matches WHERE match_key = $1`, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("match %q is not stored", key)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up match %q: %w", key, err)
	}

	s.mu.Lock()
	s.matchIDs[key] = id
	s.mu.Unlock()
	return id, nil
}

func (s *PostgresStore) SaveMatches(ctx context.Context, matches []*models.Match) error {
	now := time.Now().UTC()

	upsert := `
	INSERT INTO current_odds (match_id, bookmaker_id, market_code, outcome, odds, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (match_id, bookmaker_id, market_code, outcome) DO UPDATE SET
		odds = EXCLUDED.odds,
		updated_at = EXCLUDED.updated_at
	`
	appendHistory := `
	INSERT INTO odds_history (match_id, bookmaker_id, market_code, outcome, odds, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, match := range matches {
		mid, err := s.matchID(ctx, match)
		if err != nil {
			return err
		}
		for code, quotes := range match.Markets {
			for book, entry := range quotes {
				bid, err := s.bookmakerID(ctx, book)
				if err != nil {
					return err
				}
				for outcome, odds := range entry {
					if _, err := s.db.ExecContext(ctx, upsert, mid, bid, code, outcome, odds, now); err != nil {
						return fmt.Errorf("failed to upsert current odds: %w", err)
					}
					if _, err := s.db.ExecContext(ctx, appendHistory, mid, bid, code, outcome, odds, now); err != nil {
						return fmt.Errorf("failed to append odds history: %w", err)
					}
				}
			}
		}
	}
	return nil
}

// SaveFairQuotes records fair rows insert-if-absent: the first computation
// for an outcome under a given reference book stands.
func (s *PostgresStore) SaveFairQuotes(ctx context.Context, rows []models.FairQuote) error {
	now := time.Now().UTC()
	query := `
	INSERT INTO fair_probs (match_id, market_code, outcome, reference_book, fair_probability, no_vig_odds, margin, computed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (match_id, market_code, outcome, reference_book) DO NOTHING
	`
	for _, row := range rows {
		mid, err := s.matchIDByKey(ctx, row.MatchKey)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query,
			mid, row.MarketCode, row.Outcome, row.ReferenceBook,
			row.FairProbability, row.NoVigOdds, row.Margin, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fair quote: %w", err)
		}
	}
	return nil
}

// SaveEVOpportunities records EV rows insert-if-absent on the quote's
// natural key; the first detection stands. high_value only ever flips to
// true, since the high-tier set is saved after (and overlaps) the full set.
func (s *PostgresStore) SaveEVOpportunities(ctx context.Context, opps []models.EVOpportunity, highValue bool) error {
	now := time.Now().UTC()
	query := `
	INSERT INTO ev_results (match_id, market_code, outcome, bookmaker, offered_odds, reference_book, reference_odds, fair_probability, ev_percent, high_value, detected_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (match_id, market_code, outcome, bookmaker)
	DO UPDATE SET high_value = ev_results.high_value OR EXCLUDED.high_value
	`
	for _, opp := range opps {
		mid, err := s.matchIDByKey(ctx, opp.MatchKey)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query,
			mid, opp.MarketCode, opp.Outcome, opp.Bookmaker, opp.OfferedOdds,
			opp.ReferenceBook, opp.ReferenceOdds, opp.FairProbability, opp.EVPercent,
			highValue, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ev result: %w", err)
		}
	}
	return nil
}

// SaveArbOpportunities records arbitrages insert-if-absent per market; the
// first detected leg set stands even when best prices shuffle later.
func (s *PostgresStore) SaveArbOpportunities(ctx context.Context, arbs []models.ArbitrageOpportunity) error {
	now := time.Now().UTC()
	query := `
	INSERT INTO arb_results (match_id, market_code, inv_sum, roi_percent, total_stake, profit, legs, detected_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (match_id, market_code) DO NOTHING
	`
	for _, arb := range arbs {
		mid, err := s.matchIDByKey(ctx, arb.MatchKey)
		if err != nil {
			return err
		}
		legs, err := json.Marshal(arb.Legs)
		if err != nil {
			return fmt.Errorf("failed to marshal arb legs: %w", err)
		}
		_, err = s.db.ExecContext(ctx, query,
			mid, arb.MarketCode, arb.InvSum, arb.ROIPercent,
			arb.TotalStake, arb.Profit, legs, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert arb result: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveClosingQuotes(ctx context.Context, quotes []models.ClosingQuote) error {
	query := `
	INSERT INTO closing_odds (match_id, market_code, outcome, bookmaker, odds, no_vig_odds, captured_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (match_id, market_code, outcome) DO NOTHING
	`
	for _, q := range quotes {
		mid, err := s.matchIDByKey(ctx, q.MatchKey)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query,
			mid, q.MarketCode, q.Outcome, q.Bookmaker, q.Odds, q.NoVigOdds, q.CapturedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert closing quote: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) PendingClosingEvals(ctx context.Context, now time.Time) ([]PendingEval, error) {
	// Highest-EV bookmaker per outcome is the one graded against the close.
	query := `
	SELECT DISTINCT ON (e.match_id, e.market_code, e.outcome)
		m.match_key, m.sport, m.home_team, m.away_team, m.start_time,
		e.market_code, e.outcome, e.bookmaker, e.offered_odds,
		e.reference_book, e.reference_odds, e.fair_probability, e.ev_percent,
		c.bookmaker, c.odds, c.no_vig_odds, c.captured_at
	FROM ev_results e
	JOIN matches m ON m.id = e.match_id
	JOIN closing_odds c ON c.match_id = e.match_id
		AND c.market_code = e.market_code
		AND c.outcome = e.outcome
	WHERE e.high_value
		AND m.start_time <= $1
		AND NOT EXISTS (
			SELECT 1 FROM ev_closing_results r
			WHERE r.match_id = e.match_id
				AND r.market_code = e.market_code
				AND r.outcome = e.outcome
		)
	ORDER BY e.match_id, e.market_code, e.outcome, e.ev_percent DESC
	`
	rows, err := s.db.QueryContext(ctx, query, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query pending closing evals: %w", err)
	}
	defer rows.Close()

	var out []PendingEval
	for rows.Next() {
		var (
			p          PendingEval
			home, away string
		)
		err := rows.Scan(
			&p.EV.MatchKey, &p.EV.Sport, &home, &away, &p.EV.StartTime,
			&p.EV.MarketCode, &p.EV.Outcome, &p.EV.Bookmaker, &p.EV.OfferedOdds,
			&p.EV.ReferenceBook, &p.EV.ReferenceOdds, &p.EV.FairProbability, &p.EV.EVPercent,
			&p.Closing.Bookmaker, &p.Closing.Odds, &p.Closing.NoVigOdds, &p.Closing.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending closing eval: %w", err)
		}
		p.EV.MatchName = home + " vs " + away
		p.Closing.MatchKey = p.EV.MatchKey
		p.Closing.MarketCode = p.EV.MarketCode
		p.Closing.Outcome = p.EV.Outcome
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveClosingEvals(ctx context.Context, evals []models.ClosingEval) error {
	query := `
	INSERT INTO ev_closing_results (match_id, market_code, outcome, bookmaker, offered_odds, ev_percent, closing_no_vig, beat_closing, evaluated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (match_id, market_code, outcome, bookmaker) DO NOTHING
	`
	for _, eval := range evals {
		mid, err := s.matchIDByKey(ctx, eval.MatchKey)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query,
			mid, eval.MarketCode, eval.Outcome, eval.Bookmaker,
			eval.OfferedOdds, eval.EVPercent, eval.ClosingNoVig,
			eval.BeatClosing, eval.EvaluatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert closing eval: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListMatches(ctx context.Context, sport string, limit, offset int) ([]MatchRecord, error) {
	query := `
	SELECT id, match_key, sport, home_team, away_team, start_time, created_at
	FROM matches
	WHERE start_time > NOW() AND ($1 = '' OR sport = $1)
	ORDER BY start_time
	LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, sport, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.Key, &m.Sport, &m.Home, &m.Away, &m.StartTime, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListOdds(ctx context.Context, matchKey string) ([]OddsRecord, error) {
	query := `
	SELECT b.name, o.market_code, o.outcome, o.odds, o.updated_at
	FROM current_odds o
	JOIN bookmakers b ON b.id = o.bookmaker_id
	JOIN matches m ON m.id = o.match_id
	WHERE m.match_key = $1
	ORDER BY o.market_code, b.name, o.outcome
	`
	rows, err := s.db.QueryContext(ctx, query, matchKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query current odds: %w", err)
	}
	defer rows.Close()

	var out []OddsRecord
	for rows.Next() {
		rec := OddsRecord{MatchKey: matchKey}
		if err := rows.Scan(&rec.Bookmaker, &rec.MarketCode, &rec.Outcome, &rec.Odds, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListFairQuotes(ctx context.Context, matchKey string) ([]StoredFair, error) {
	query := `
	SELECT m.home_team, m.away_team,
		f.market_code, f.outcome, f.reference_book,
		f.fair_probability, f.no_vig_odds, f.margin, f.computed_at
	FROM fair_probs f
	JOIN matches m ON m.id = f.match_id
	WHERE m.match_key = $1
		AND f.computed_at = (
			SELECT MAX(f2.computed_at) FROM fair_probs f2 WHERE f2.match_id = f.match_id
		)
	ORDER BY f.market_code, f.outcome
	`
	rows, err := s.db.QueryContext(ctx, query, matchKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query fair quotes: %w", err)
	}
	defer rows.Close()

	var out []StoredFair
	for rows.Next() {
		var (
			f          StoredFair
			home, away string
		)
		err := rows.Scan(
			&home, &away,
			&f.MarketCode, &f.Outcome, &f.ReferenceBook,
			&f.FairProbability, &f.NoVigOdds, &f.Margin, &f.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fair quote: %w", err)
		}
		f.MatchKey = matchKey
		f.MatchName = home + " vs " + away
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEVOpportunities(ctx context.Context, minEV float64, limit, offset int) ([]StoredEV, error) {
	query := `
	SELECT m.match_key, m.sport, m.home_team, m.away_team, m.start_time,
		e.market_code, e.outcome, e.bookmaker, e.offered_odds,
		e.reference_book, e.reference_odds, e.fair_probability, e.ev_percent,
		e.high_value, e.detected_at
	FROM ev_results e
	JOIN matches m ON m.id = e.match_id
	WHERE e.ev_percent >= $1
	ORDER BY e.detected_at DESC, e.id DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, minEV, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ev results: %w", err)
	}
	defer rows.Close()

	var out []StoredEV
	for rows.Next() {
		var (
			e          StoredEV
			home, away string
		)
		err := rows.Scan(
			&e.MatchKey, &e.Sport, &home, &away, &e.StartTime,
			&e.MarketCode, &e.Outcome, &e.Bookmaker, &e.OfferedOdds,
			&e.ReferenceBook, &e.ReferenceOdds, &e.FairProbability, &e.EVPercent,
			&e.HighValue, &e.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ev result: %w", err)
		}
		e.MatchName = home + " vs " + away
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListArbOpportunities(ctx context.Context, minROI float64, limit, offset int) ([]StoredArb, error) {
	query := `
	SELECT m.match_key, m.sport, m.home_team, m.away_team, m.start_time,
		a.market_code, a.inv_sum, a.roi_percent, a.total_stake, a.profit,
		a.legs, a.detected_at
	FROM arb_results a
	JOIN matches m ON m.id = a.match_id
	WHERE a.roi_percent >= $1
	ORDER BY a.detected_at DESC, a.id DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, minROI, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query arb results: %w", err)
	}
	defer rows.Close()

	var out []StoredArb
	for rows.Next() {
		var (
			a          StoredArb
			home, away string
			legs       []byte
		)
		err := rows.Scan(
			&a.MatchKey, &a.Sport, &home, &away, &a.StartTime,
			&a.MarketCode, &a.InvSum, &a.ROIPercent, &a.TotalStake, &a.Profit,
			&legs, &a.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan arb result: %w", err)
		}
		if err := json.Unmarshal(legs, &a.Legs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal arb legs: %w", err)
		}
		a.MatchName = home + " vs " + away
		out = append(out, a)
	}
	return out, rows.Err()
}

// PruneHistory deletes odds history and old detection rows recorded before
// the cutoff and returns how many went. Matches, current odds and the
// closing tables are kept: they stay small and the closing results are the
// long-term output.
func (s *PostgresStore) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	queries := []struct {
		table string
		query string
	}{
		{"odds_history", `DELETE FROM odds_history WHERE recorded_at < $1`},
		{"fair_probs", `DELETE FROM fair_probs WHERE computed_at < $1`},
		{"ev_results", `DELETE FROM ev_results WHERE detected_at < $1`},
		{"arb_results", `DELETE FROM arb_results WHERE detected_at < $1`},
	}

	var total int64
	for _, q := range queries {
		res, err := s.db.ExecContext(ctx, q.query, before.UTC())
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", q.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			continue
		}
		total += n
		slog.Info("Pruned history table", "table", q.table, "rows", n)
	}
	return total, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
