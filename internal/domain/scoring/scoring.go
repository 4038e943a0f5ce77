// Package scoring computes the academic achievement and comprehensive
// performance scores of an application.
//
// Both scorers are pure: they read their inputs and the ruleset, never mutate
// either, and never fail. A record the ruleset cannot value contributes zero.
// A Scorer is safe for concurrent use.
package scoring

import (
	"math"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithRuleset selects the ordinance to score under.
func WithRuleset(rs *rules.Ruleset) Option {
	return func(s *Scorer) {
		if rs != nil {
			s.rules = rs
		}
	}
}

// Scorer scores portfolios under one ruleset.
type Scorer struct {
	rules *rules.Ruleset
}

// New creates a Scorer. Without options it uses the built-in ordinance.
func New(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rules == nil {
		s.rules = rules.Default()
	}
	return s
}

// Ruleset returns the ordinance the scorer applies.
func (s *Scorer) Ruleset() *rules.Ruleset { return s.rules }

// Academic scores publications, patents, competitions and innovation projects.
func (s *Scorer) Academic(in model.AcademicInputs) model.AcademicResult {
	ar := &s.rules.Academic

	res := model.AcademicResult{
		Publications: publicationScore(ar, in.Publications),
		Patents:      patentScore(ar, in.Patents),
		Innovation:   innovationScore(ar, in.Innovation),
	}
	res.Competitions, res.Ranked = competitionScore(ar, in.Competitions)
	res.Total = res.Publications + res.Patents + res.Competitions + res.Innovation

	if in.SpecialTalentPassed {
		res.SpecialTalent = true
		res.Total = ar.SpecialTalentScore
	}
	res.Capped = clamp(res.Total, 0, ar.Ceiling)
	return res
}

// Performance scores internship, military service, volunteering, honors,
// social work and sports.
func (s *Scorer) Performance(in model.PerformanceInputs) model.PerformanceResult {
	pr := &s.rules.Performance

	res := model.PerformanceResult{
		Internship: pr.InternshipValue(in.Internship.Duration),
		Military:   pr.MilitaryValue(in.Military.Years),
		Volunteer:  volunteerScore(pr, in.Volunteer),
		Honors:     honorScore(pr, in.Honors),
		SocialWork: socialWorkScore(pr, in.SocialWork),
		Sports:     sportScore(pr, in.Sports),
	}
	res.Total = res.Internship + res.Military + res.Volunteer + res.Honors + res.SocialWork + res.Sports
	res.Capped = clamp(res.Total, 0, pr.Ceiling)
	return res
}

// BaseCeiling bounds the GPA-derived academic base computed upstream.
const BaseCeiling = 80.0

// Evaluate scores a whole application. EvaluatedAt is left for the caller.
func (s *Scorer) Evaluate(app model.Application) model.Evaluation { //nolint:gocritic // hugeParam: applications are passed by value throughout
	ev := model.Evaluation{
		ApplicationID:  app.ID,
		Applicant:      app.Applicant,
		RulesetVersion: s.rules.Version,
		AcademicBase:   app.AcademicBase,
		Academic:       s.Academic(app.Academic),
		Performance:    s.Performance(app.Performance),
	}
	ev.Composite = Composite(ev.AcademicBase, ev.Academic, ev.Performance)
	return ev
}

// Composite is the clamped base plus both capped sub-scores. A NaN base
// counts as zero.
func Composite(base float64, ac model.AcademicResult, pf model.PerformanceResult) float64 { //nolint:gocritic // hugeParam: results are small value types
	if math.IsNaN(base) {
		base = 0
	}
	return clamp(base, 0, BaseCeiling) + ac.Capped + pf.Capped
}
