package loadtest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/pkg/logger"
)

// waitForEvaluations polls GET /stats until no submission is pending and at
// least want applications are ranked, or config.WaitTimeout elapses. It
// returns the last stats observed.
func waitForEvaluations(ctx context.Context, config *Config, want int) (serviceStats, error) {
	log := logger.Get()
	log.Info(ctx, "waiting for applications to be evaluated", logger.Int("expected", want))

	client := newHTTPClient(config.BaseURL, config.Timeout)
	ctx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	var last serviceStats
	for {
		if err := client.Get(ctx, "/stats", &last); err != nil {
			log.Warn(ctx, "stats poll failed", logger.Error(err))
		} else if last.Pending == 0 && last.Ranked >= want {
			log.Info(ctx, "evaluations settled", logger.Int("ranked", last.Ranked), logger.Int("failed", last.Failed))
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%d pending and %d ranked of %d expected: %w", last.Pending, last.Ranked, want, ctx.Err())
		case <-ticker.C:
		}
	}
}

// retrieveRanks fetches GET /rank/{id} for every application concurrently.
// Applications whose rank cannot be read are left out of the result.
func retrieveRanks(ctx context.Context, config *Config, apps []model.Application, stats *Stats) ([]Entry, error) {
	log := logger.Get()
	log.Info(ctx, "retrieving ranks", logger.Int("applications", len(apps)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	ranks := make([]Entry, len(apps))
	var failed atomic.Int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices instead of IDs
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				id := apps[index].ID
				var entry Entry
				if err := client.Get(ctx, "/rank/"+url.PathEscape(id), &entry); err != nil {
					failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "failed to get rank", logger.String("application_id", id), logger.Error(err))
					}
					continue
				}
				ranks[index] = entry
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range apps {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out empty entries (failed retrievals)
	valid := make([]Entry, 0, len(ranks))
	for _, entry := range ranks {
		if entry.ApplicationID != "" {
			valid = append(valid, entry)
		}
	}
	stats.RanksRetrieved = len(valid)

	log.Info(ctx, "rank retrieval completed",
		logger.Int("retrieved", len(valid)),
		logger.Int("failed", int(failed.Load())))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank retrieval interrupted: %w", err)
	}
	return valid, nil
}

// getRanking retrieves the first config.TopN ranking entries.
func getRanking(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	logger.Get().Info(ctx, "getting ranking page", logger.Int("limit", config.TopN))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var ranking []Entry
	if err := client.Get(ctx, fmt.Sprintf("/ranking?limit=%d", config.TopN), &ranking); err != nil {
		return nil, err
	}

	stats.RankingEntries = len(ranking)
	logger.Get().Info(ctx, "retrieved ranking entries", logger.Int("count", len(ranking)))
	return ranking, nil
}
