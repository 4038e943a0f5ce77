// Package rules holds the scoring ordinance: every award table, divisor and
// cap the scorers consult.
//
// A Ruleset is plain data. Once registered it is shared between goroutines and
// must not be mutated; use Clone to derive a modified copy.
package rules

import (
	"slices"
	"strings"

	"github.com/okian/merit/internal/domain/model"
)

// Ruleset is one admission cycle's ordinance.
type Ruleset struct {
	Version     string           `yaml:"version"`
	Description string           `yaml:"description"`
	Academic    AcademicRules    `yaml:"academic"`
	Performance PerformanceRules `yaml:"performance"`
}

// Attribution maps authorship position to the share of a paper's value.
type Attribution struct {
	Solo    float64 `yaml:"solo"`
	CoFirst float64 `yaml:"co_first"`
	First   float64 `yaml:"first"`
	Second  float64 `yaml:"second"`
}

// RankDivisor divides a team result for ranks up to and including MaxRank.
type RankDivisor struct {
	MaxRank int     `yaml:"max_rank"`
	Divisor float64 `yaml:"divisor"`
}

// AcademicRules covers publications, patents, competitions and innovation.
type AcademicRules struct {
	Ceiling             float64                                                `yaml:"ceiling"`
	SpecialTalentScore  float64                                                `yaml:"special_talent_score"`
	PublicationBase     map[model.PublicationCategory]float64                  `yaml:"publication_base"`
	CategoryLimits      map[model.PublicationCategory]int                      `yaml:"category_limits"`
	Attribution         Attribution                                            `yaml:"attribution"`
	PatentSole          float64                                                `yaml:"patent_sole"`
	PatentSharedRatio   float64                                                `yaml:"patent_shared_ratio"`
	CompetitionBase     map[model.CompetitionLevel]map[model.AwardTier]float64 `yaml:"competition_base"`
	IndividualDivisor   float64                                                `yaml:"individual_divisor"`
	TeamMinSize         int                                                    `yaml:"team_min_size"`
	TeamMaxSize         int                                                    `yaml:"team_max_size"`
	LargeTeamRankLimit  int                                                    `yaml:"large_team_rank_limit"`
	LargeTeamDivisor    float64                                                `yaml:"large_team_divisor"`
	SpecialCompetitions []string                                               `yaml:"special_competitions"`
	SpecialRankDivisors []RankDivisor                                          `yaml:"special_rank_divisors"`
	CompetitionSlots    int                                                    `yaml:"competition_slots"`
	ExternalSlots       int                                                    `yaml:"external_slots"`
	InnovationValue     map[model.Scope]map[model.ProjectRole]float64          `yaml:"innovation_value"`
	InnovationCap       float64                                                `yaml:"innovation_cap"`
}

// YearTier awards Points once the service reaches MinYears.
type YearTier struct {
	MinYears int     `yaml:"min_years"`
	Points   float64 `yaml:"points"`
}

// VolunteerRules covers the hours and awards parts of volunteering.
type VolunteerRules struct {
	HoursThreshold     float64                                         `yaml:"hours_threshold"`
	HoursPerStep       float64                                         `yaml:"hours_per_step"`
	PointsPerStep      float64                                         `yaml:"points_per_step"`
	HoursCap           float64                                         `yaml:"hours_cap"`
	OtherSegmentWeight float64                                         `yaml:"other_segment_weight"`
	Awards             map[model.VolunteerRole]map[model.Scope]float64 `yaml:"awards"`
	AwardsCap          float64                                         `yaml:"awards_cap"`
	Cap                float64                                         `yaml:"cap"`
}

// PerformanceRules covers the comprehensive performance component.
type PerformanceRules struct {
	Ceiling                float64                                       `yaml:"ceiling"`
	Internship             map[model.InternshipDuration]float64          `yaml:"internship"`
	Military               []YearTier                                    `yaml:"military"`
	Volunteer              VolunteerRules                                `yaml:"volunteer"`
	HonorValue             map[model.Scope]float64                       `yaml:"honor_value"`
	CollectiveFactor       float64                                       `yaml:"collective_factor"`
	HonorCap               float64                                       `yaml:"honor_cap"`
	SocialRoleCoefficient  map[model.SocialRole]float64                  `yaml:"social_role_coefficient"`
	RatingScale            float64                                       `yaml:"rating_scale"`
	SocialCap              float64                                       `yaml:"social_cap"`
	SportValue             map[model.Scope]map[model.SportResult]float64 `yaml:"sport_value"`
	IndividualSportDivisor float64                                       `yaml:"individual_sport_divisor"`
}

// PublicationValue returns the base value of a resolved venue category.
func (r *AcademicRules) PublicationValue(c model.PublicationCategory) float64 {
	if !c.Valid() {
		return 0
	}
	return r.PublicationBase[c]
}

// CategoryLimit returns how many papers of c may count and whether c is limited.
func (r *AcademicRules) CategoryLimit(c model.PublicationCategory) (int, bool) {
	n, ok := r.CategoryLimits[c]
	return n, ok
}

// CompetitionValue looks up the level x award table.
func (r *AcademicRules) CompetitionValue(l model.CompetitionLevel, a model.AwardTier) float64 {
	if !l.Valid() || !a.Valid() {
		return 0
	}
	return r.CompetitionBase[l][a]
}

// IsSpecialCompetition reports whether name is one of the large-team contests
// with their own rank divisors. Matching ignores case and surrounding space.
func (r *AcademicRules) IsSpecialCompetition(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return slices.ContainsFunc(r.SpecialCompetitions, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), name)
	})
}

// SpecialRankDivisor returns the divisor for a team rank in a special
// competition, or 0 when the rank earns nothing.
func (r *AcademicRules) SpecialRankDivisor(rank int) float64 {
	if rank < 1 {
		return 0
	}
	for _, d := range r.SpecialRankDivisors {
		if rank <= d.MaxRank {
			return d.Divisor
		}
	}
	return 0
}

// InnovationProjectValue looks up the level x role table.
func (r *AcademicRules) InnovationProjectValue(l model.Scope, role model.ProjectRole) float64 {
	if !l.Valid() || !role.Valid() {
		return 0
	}
	return r.InnovationValue[l][role]
}

// InternshipValue returns the points for a placement duration.
func (r *PerformanceRules) InternshipValue(d model.InternshipDuration) float64 {
	if !d.Valid() {
		return 0
	}
	return r.Internship[d]
}

// MilitaryValue returns the points of the highest tier years reaches.
func (r *PerformanceRules) MilitaryValue(years int) float64 {
	var best float64
	for _, t := range r.Military {
		if years >= t.MinYears && t.Points > best {
			best = t.Points
		}
	}
	return best
}

// VolunteerAwardValue looks up the role x level table.
func (r *PerformanceRules) VolunteerAwardValue(role model.VolunteerRole, l model.Scope) float64 {
	if !role.Valid() || !l.Valid() {
		return 0
	}
	return r.Volunteer.Awards[role][l]
}

// HonorPoints values a single honor.
func (r *PerformanceRules) HonorPoints(h model.Honor) float64 {
	if !h.Level.Valid() {
		return 0
	}
	v := r.HonorValue[h.Level]
	if h.Collective {
		v *= r.CollectiveFactor
	}
	return v
}

// SocialCoefficient returns the role coefficient of a social-work tier.
func (r *PerformanceRules) SocialCoefficient(role model.SocialRole) float64 {
	if !role.Valid() {
		return 0
	}
	return r.SocialRoleCoefficient[role]
}

// SportPoints looks up the scope x result table.
func (r *PerformanceRules) SportPoints(s model.Scope, res model.SportResult) float64 {
	if !s.Valid() || !res.Valid() {
		return 0
	}
	return r.SportValue[s][res]
}
