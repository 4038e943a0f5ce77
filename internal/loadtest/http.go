package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/pkg/logger"
)

// submitOutcome classifies one POST /applications call.
type submitOutcome int

const (
	outcomeAccepted submitOutcome = iota
	outcomeDuplicate
	outcomeBackpressure
	outcomeFailed
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request and decodes a 200 JSON response into out.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// submitApplications posts every application through a pool of workers.
func submitApplications(ctx context.Context, config *Config, apps []model.Application, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "submitting applications", logger.Int("applications", len(apps)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var (
		submitted   atomic.Int64
		accepted    atomic.Int64
		duplicate   atomic.Int64
		backpressed atomic.Int64
		failed      atomic.Int64
		lastReport  atomic.Int64
	)

	appChan := make(chan model.Application, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for app := range appChan {
				outcome, retries := submitWithRetry(ctx, client, app)
				backpressed.Add(int64(retries))
				submitted.Add(1)
				switch outcome {
				case outcomeAccepted:
					accepted.Add(1)
				case outcomeDuplicate:
					duplicate.Add(1)
				case outcomeBackpressure:
					backpressed.Add(1)
					failed.Add(1)
				case outcomeFailed:
					failed.Add(1)
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if config.Verbose && now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "submission progress",
						logger.Int("submitted", int(submitted.Load())),
						logger.Int("total", len(apps)),
						logger.Int("accepted", int(accepted.Load())),
						logger.Int("failed", int(failed.Load())))
				}
			}
		}()
	}

	// Send applications to workers
	go func() {
		defer close(appChan)
		for _, app := range apps {
			select {
			case <-ctx.Done():
				return
			case appChan <- app:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Backpressured = int(backpressed.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("backpressured", stats.Backpressured),
		logger.Int("failed", stats.Failed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	return nil
}

// submitWithRetry resends an application rejected with 429 a few times
// before giving up. It returns the final outcome and the number of retries.
func submitWithRetry(ctx context.Context, client *HTTPClient, app model.Application) (submitOutcome, int) { //nolint:gocritic // hugeParam: applications are passed by value throughout
	retries := 0
	for attempt := 1; ; attempt++ {
		outcome := submitSingle(ctx, client, app)
		if outcome != outcomeBackpressure || attempt == maxSubmitAttempts {
			return outcome, retries
		}
		retries++
		select {
		case <-ctx.Done():
			return outcomeFailed, retries
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}

// submitSingle submits a single application and classifies the response.
func submitSingle(ctx context.Context, client *HTTPClient, app model.Application) submitOutcome { //nolint:gocritic // hugeParam: applications are passed by value throughout
	resp, err := client.Post(ctx, "/applications", app)
	if err != nil {
		return outcomeFailed
	}
	defer resp.Body.Close()

	var ack AckResponse
	_ = json.NewDecoder(resp.Body).Decode(&ack)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		if ack.Duplicate {
			return outcomeDuplicate
		}
		return outcomeAccepted
	case http.StatusTooManyRequests:
		return outcomeBackpressure
	default:
		return outcomeFailed
	}
}
