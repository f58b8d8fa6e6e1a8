package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/otso2008/OddsBot/internal/pkg/metrics"
)

// FetchAll polls every provider for every sport key and merges the results.
// Providers run in parallel; sports within one provider run sequentially so
// a slow or rate-limited upstream is not hammered with concurrent requests.
// A failed provider/sport pair is logged and skipped, never fatal.
func FetchAll(ctx context.Context, providers []Provider, sports []string, timeout time.Duration) []Event {
	if len(providers) == 0 || len(sports) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		events []Event
		wg     sync.WaitGroup
	)

	for _, p := range providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			fetched := 0
			for _, sport := range sports {
				if ctx.Err() != nil {
					return
				}

				evs, err := fetchOne(ctx, p, sport, timeout)
				if err != nil {
					if ctx.Err() == nil {
						metrics.FeedErrors.WithLabelValues(p.Name()).Inc()
						slog.Error("Feed fetch failed", "provider", p.Name(), "sport", sport, "error", err)
					}
					continue
				}
				if len(evs) == 0 {
					continue
				}

				fetched += len(evs)
				mu.Lock()
				events = append(events, evs...)
				mu.Unlock()
			}

			metrics.FetchedEvents.WithLabelValues(p.Name()).Add(float64(fetched))
			slog.Info("Feed fetch finished", "provider", p.Name(), "events", fetched)
		}()
	}

	wg.Wait()
	return events
}

func fetchOne(ctx context.Context, p Provider, sport string, timeout time.Duration) ([]Event, error) {
	fetchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Fetch(fetchCtx, sport)
}
