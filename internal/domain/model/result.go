package model

// CompetitionScore records how one surviving competition entry was valued.
type CompetitionScore struct {
	Competition Competition `json:"competition"`
	Base        float64     `json:"base"`
	Value       float64     `json:"value"`
	Selected    bool        `json:"selected"`
}

// AcademicResult is the outcome of academic achievement scoring.
// Total may exceed the ceiling; Capped never does.
type AcademicResult struct {
	Publications  float64            `json:"publications"`
	Patents       float64            `json:"patents"`
	Competitions  float64            `json:"competitions"`
	Innovation    float64            `json:"innovation"`
	Total         float64            `json:"total"`
	Capped        float64            `json:"capped"`
	SpecialTalent bool               `json:"special_talent"`
	Ranked        []CompetitionScore `json:"ranked_competitions,omitempty"`
}

// PerformanceResult is the outcome of comprehensive performance scoring.
type PerformanceResult struct {
	Internship float64 `json:"internship"`
	Military   float64 `json:"military"`
	Volunteer  float64 `json:"volunteer"`
	Honors     float64 `json:"honors"`
	SocialWork float64 `json:"social_work"`
	Sports     float64 `json:"sports"`
	Total      float64 `json:"total"`
	Capped     float64 `json:"capped"`
}
