// Package types contains the read shapes shared by the service and the HTTP API.
package types

import (
	"time"

	"github.com/okian/merit/internal/domain/model"
)

// Entry represents a ranking row.
type Entry struct {
	Rank           int       `json:"rank"`
	ApplicationID  string    `json:"application_id"`
	Applicant      string    `json:"applicant"`
	RulesetVersion string    `json:"ruleset_version"`
	Composite      float64   `json:"composite"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// Status is the processing state of a submitted application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEvaluated Status = "evaluated"
	StatusFailed    Status = "failed"
)

// Result is the latest known outcome for an application.
type Result struct {
	ApplicationID string            `json:"application_id"`
	Status        Status            `json:"status"`
	Evaluation    *model.Evaluation `json:"evaluation,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Submission acknowledges an asynchronous submit.
type Submission struct {
	ApplicationID string `json:"application_id"`
	Duplicate     bool   `json:"duplicate"`
}

// RulesetInfo lists the registered ordinance versions.
type RulesetInfo struct {
	Default  string   `json:"default"`
	Versions []string `json:"versions"`
}
