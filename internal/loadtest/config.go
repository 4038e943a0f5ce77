package loadtest

import (
	"time"

	"github.com/okian/merit/internal/domain/types"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Applications int           // Number of applications to generate
	TopN         int           // Number of ranking entries to fetch
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	WaitTimeout  time.Duration // How long to wait for queued evaluations
	PollInterval time.Duration // How often /stats is polled while waiting
	Ruleset      string        // Ordinance version; empty selects the server default
	Seed         uint64        // Generator seed; zero picks a random one
	OutputFile   string        // Output file for generated applications
	Verbose      bool          // Enable verbose logging
}

// Entry is a ranking row as served by the API.
type Entry = types.Entry

// AckResponse represents the response from an application submission.
type AckResponse struct {
	Status        string `json:"status"`
	ApplicationID string `json:"application_id"`
	Duplicate     bool   `json:"duplicate"`
}

// serviceStats is the subset of GET /stats a run waits on.
type serviceStats struct {
	Ranked  int `json:"ranked"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

// Stats holds run statistics.
type Stats struct {
	Generated      int
	Submitted      int
	Accepted       int
	Duplicate      int
	Backpressured  int
	Failed         int
	RanksRetrieved int
	RankingEntries int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
