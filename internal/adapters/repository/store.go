// Package repository defines the ranking store interface and errors.
package repository

import (
	"context"
	"time"
)

// Entry represents a ranking row.
type Entry struct {
	Rank           int
	ApplicationID  string
	Applicant      string
	RulesetVersion string
	Composite      float64
	EvaluatedAt    time.Time
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Upsert places an application at its composite score, replacing any
	// earlier evaluation of the same application. Returns true when the
	// application was not ranked before.
	Upsert(ctx context.Context, e Entry) (bool, error)

	// Rank returns the current rank and score for an application.
	// Equal composites share a rank and the next rank is skipped.
	// Returns ErrNotFound if the application is unknown.
	Rank(ctx context.Context, applicationID string) (Entry, error)

	// TopN returns the top-N entries ordered by composite desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Page returns up to limit entries starting at a zero-based offset.
	Page(ctx context.Context, offset, limit int) ([]Entry, error)

	// Count returns the number of ranked applications.
	Count(ctx context.Context) int
}
