// Package loadtest drives a running merit service over HTTP: it generates
// synthetic portfolios, submits them concurrently, waits for the workers to
// drain the queue and then cross-checks the ranking endpoints.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
)

// ErrInvalidConfig reports a configuration the run cannot start with.
var ErrInvalidConfig = errors.New("invalid load test config")

// Run executes the complete load test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.normalize(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting merit load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("applications", config.Applications),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("topN", config.TopN),
		logger.String("ruleset", config.Ruleset),
		logger.Any("seed", config.Seed))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate applications
	apps, err := generateApplications(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}

	// Step 3: Submit applications concurrently
	if err := submitApplications(ctx, config, apps, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	// Step 4: Wait for the workers to drain the queue
	served, err := waitForEvaluations(ctx, config, stats.Accepted)
	if err != nil {
		return stats, fmt.Errorf("evaluation did not settle: %w", err)
	}

	// Step 5: Retrieve ranks concurrently
	ranks, err := retrieveRanks(ctx, config, apps, stats)
	if err != nil {
		return stats, fmt.Errorf("rank retrieval failed: %w", err)
	}

	// Step 6: Get the ranking head
	ranking, err := getRanking(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("ranking retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(ctx, config, ranks, ranking, len(ranks) == served.Ranked); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save applications to file
	if config.OutputFile != "" {
		if err := saveApplications(ctx, config.OutputFile, apps); err != nil {
			log.Warn(ctx, "failed to save applications to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// normalize fills defaults and rejects unusable settings.
func (c *Config) normalize() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Applications < 1:
		return fmt.Errorf("%w: applications must be positive, got %d", ErrInvalidConfig, c.Applications)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.TopN < 1:
		return fmt.Errorf("%w: top must be positive, got %d", ErrInvalidConfig, c.TopN)
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Seed == 0 {
		c.Seed = rand.Uint64() //nolint:gosec // synthetic load, not security sensitive
	}
	return nil
}

// checkServiceHealth verifies the service is running. /healthz serves the
// Prometheus exposition, so any 200 counts as healthy.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.BaseURL, config.Timeout)
	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("failed to reach service: %w", err)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveApplications writes the generated applications as a JSON array.
func saveApplications(ctx context.Context, filename string, apps []model.Application) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(apps); err != nil {
		return fmt.Errorf("failed to write applications: %w", err)
	}

	logger.Get().Info(ctx, "applications saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Accepted+stats.Duplicate) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("backpressured", stats.Backpressured),
		logger.Int("failed", stats.Failed),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("rankingEntries", stats.RankingEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("applicationsPerSecond", perSecond))
}
