package rules

import (
	"errors"
	"fmt"
)

// Validate checks the ordinance for values the scorers cannot use: missing
// version, non-positive ceilings or divisors, negative table entries and keys
// outside the known discriminators.
func (r *Ruleset) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidRuleset}, args...)...))
	}

	if r.Version == "" {
		bad("version must not be empty")
	}

	a := &r.Academic
	positive := map[string]float64{
		"academic.ceiling":                     a.Ceiling,
		"academic.individual_divisor":          a.IndividualDivisor,
		"academic.large_team_divisor":          a.LargeTeamDivisor,
		"performance.ceiling":                  r.Performance.Ceiling,
		"performance.rating_scale":             r.Performance.RatingScale,
		"performance.individual_sport_divisor": r.Performance.IndividualSportDivisor,
		"performance.volunteer.hours_per_step": r.Performance.Volunteer.HoursPerStep,
	}
	for name, v := range positive {
		if v <= 0 {
			bad("%s must be positive, got %v", name, v)
		}
	}
	if a.SpecialTalentScore < 0 || a.SpecialTalentScore > a.Ceiling {
		bad("academic.special_talent_score %v outside [0, %v]", a.SpecialTalentScore, a.Ceiling)
	}
	if a.TeamMinSize < 1 || a.TeamMaxSize < a.TeamMinSize {
		bad("academic team size range [%d, %d] is empty", a.TeamMinSize, a.TeamMaxSize)
	}
	if a.CompetitionSlots < 0 || a.ExternalSlots < 0 {
		bad("academic competition slots must not be negative")
	}

	for c, v := range a.PublicationBase {
		if !c.Valid() {
			bad("unknown publication category %q", c)
		}
		if v < 0 {
			bad("publication_base[%s] is negative", c)
		}
	}
	for c, n := range a.CategoryLimits {
		if !c.Valid() || n < 0 {
			bad("category_limits[%s] = %d is invalid", c, n)
		}
	}
	for l, row := range a.CompetitionBase {
		if !l.Valid() {
			bad("unknown competition level %q", l)
		}
		for aw, v := range row {
			if !aw.Valid() || v < 0 {
				bad("competition_base[%s][%s] = %v is invalid", l, aw, v)
			}
		}
	}
	prev := 0
	for _, d := range a.SpecialRankDivisors {
		if d.MaxRank <= prev || d.Divisor <= 0 {
			bad("special_rank_divisors must have increasing ranks and positive divisors")
			break
		}
		prev = d.MaxRank
	}
	for l, row := range a.InnovationValue {
		for role, v := range row {
			if !l.Valid() || !role.Valid() || v < 0 {
				bad("innovation_value[%s][%s] = %v is invalid", l, role, v)
			}
		}
	}

	p := &r.Performance
	for d, v := range p.Internship {
		if !d.Valid() || v < 0 {
			bad("internship[%s] = %v is invalid", d, v)
		}
	}
	for _, t := range p.Military {
		if t.MinYears < 0 || t.Points < 0 {
			bad("military tier %+v is invalid", t)
		}
	}
	for role, row := range p.Volunteer.Awards {
		for l, v := range row {
			if !role.Valid() || !l.Valid() || v < 0 {
				bad("volunteer.awards[%s][%s] = %v is invalid", role, l, v)
			}
		}
	}
	for l, v := range p.HonorValue {
		if !l.Valid() || v < 0 {
			bad("honor_value[%s] = %v is invalid", l, v)
		}
	}
	for role, v := range p.SocialRoleCoefficient {
		if !role.Valid() || v < 0 {
			bad("social_role_coefficient[%s] = %v is invalid", role, v)
		}
	}
	for s, row := range p.SportValue {
		for res, v := range row {
			if !s.Valid() || !res.Valid() || v < 0 {
				bad("sport_value[%s][%s] = %v is invalid", s, res, v)
			}
		}
	}

	return errors.Join(errs...)
}
