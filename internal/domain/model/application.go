package model

import "time"

// Application is one candidate's portfolio submitted for evaluation.
// Fields mirror the OpenAPI schema for /applications.
type Application struct {
	ID             string            `json:"id" yaml:"id"`                           // unique id for idempotency
	Applicant      string            `json:"applicant" yaml:"applicant"`             // candidate identifier
	RulesetVersion string            `json:"ruleset_version" yaml:"ruleset_version"` // empty selects the default ordinance
	AcademicBase   float64           `json:"academic_base" yaml:"academic_base"`     // GPA-derived part, computed upstream
	Academic       AcademicInputs    `json:"academic" yaml:"academic"`
	Performance    PerformanceInputs `json:"performance" yaml:"performance"`
}

// Evaluation is the scored form of an Application.
type Evaluation struct {
	ApplicationID  string            `json:"application_id"`
	Applicant      string            `json:"applicant"`
	RulesetVersion string            `json:"ruleset_version"`
	AcademicBase   float64           `json:"academic_base"`
	Academic       AcademicResult    `json:"academic"`
	Performance    PerformanceResult `json:"performance"`
	Composite      float64           `json:"composite"`
	EvaluatedAt    time.Time         `json:"evaluated_at"`
}
