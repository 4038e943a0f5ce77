package rules

import (
	"maps"
	"slices"

	"github.com/okian/merit/internal/domain/model"
)

// DefaultVersion identifies the built-in ordinance.
const DefaultVersion = "2025"

// Default returns a fresh copy of the built-in ordinance.
func Default() *Ruleset {
	return &Ruleset{
		Version:     DefaultVersion,
		Description: "built-in recommendation ordinance",
		Academic: AcademicRules{
			Ceiling:            15,
			SpecialTalentScore: 15,
			// Only the order of the first three categories is fixed by the
			// ordinance; their values are local choices.
			PublicationBase: map[model.PublicationCategory]float64{
				model.CategoryTopJournal:       15,
				model.CategoryHighLevelChinese: 10,
				model.CategoryInfoComm:         6,
				model.CategoryA:                10,
				model.CategoryB:                6,
				model.CategoryC:                1,
			},
			CategoryLimits: map[model.PublicationCategory]int{
				model.CategoryC: 2,
			},
			Attribution: Attribution{
				Solo:    1.0,
				CoFirst: 0.5,
				First:   0.8,
				Second:  0.2,
			},
			PatentSole:        2.0,
			PatentSharedRatio: 0.8,
			// The ordinance fixes the 0.5 to 30 range; cells in between step
			// down by level and tier.
			CompetitionBase: map[model.CompetitionLevel]map[model.AwardTier]float64{
				model.LevelAPlus: {
					model.AwardSpecial:   30,
					model.AwardFirst:     15,
					model.AwardSecond:    10,
					model.AwardThird:     5,
					model.AwardHonorable: 2,
				},
				model.LevelA: {
					model.AwardSpecial:   15,
					model.AwardFirst:     10,
					model.AwardSecond:    5,
					model.AwardThird:     2,
					model.AwardHonorable: 1,
				},
				model.LevelAMinus: {
					model.AwardSpecial:   10,
					model.AwardFirst:     5,
					model.AwardSecond:    2,
					model.AwardThird:     1,
					model.AwardHonorable: 0.5,
				},
			},
			IndividualDivisor:   3,
			TeamMinSize:         3,
			TeamMaxSize:         5,
			LargeTeamRankLimit:  5,
			LargeTeamDivisor:    5,
			SpecialCompetitions: []string{"challenge-cup", "internet-plus"},
			SpecialRankDivisors: []RankDivisor{
				{MaxRank: 1, Divisor: 3},
				{MaxRank: 3, Divisor: 4},
				{MaxRank: 5, Divisor: 5},
			},
			CompetitionSlots: 3,
			ExternalSlots:    1,
			InnovationValue: map[model.Scope]map[model.ProjectRole]float64{
				model.ScopeNational:   {model.RoleLead: 1.0, model.RoleMember: 0.3},
				model.ScopeProvincial: {model.RoleLead: 0.5, model.RoleMember: 0.2},
				model.ScopeSchool:     {model.RoleLead: 0.1, model.RoleMember: 0.05},
			},
			InnovationCap: 2,
		},
		Performance: PerformanceRules{
			Ceiling: 5,
			Internship: map[model.InternshipDuration]float64{
				model.InternshipYear:     1.0,
				model.InternshipSemester: 0.5,
			},
			Military: []YearTier{
				{MinYears: 2, Points: 2},
				{MinYears: 1, Points: 1},
			},
			Volunteer: VolunteerRules{
				HoursThreshold:     200,
				HoursPerStep:       2,
				PointsPerStep:      0.05,
				HoursCap:           1,
				OtherSegmentWeight: 0.5,
				Awards: map[model.VolunteerRole]map[model.Scope]float64{
					model.VolunteerLeader: {
						model.ScopeNational: 1.0, model.ScopeProvincial: 0.5, model.ScopeSchool: 0.25,
					},
					model.VolunteerPersonal: {
						model.ScopeNational: 1.0, model.ScopeProvincial: 0.5, model.ScopeSchool: 0.25,
					},
					model.VolunteerMember: {
						model.ScopeNational: 0.5, model.ScopeProvincial: 0.25, model.ScopeSchool: 0.1,
					},
				},
				AwardsCap: 1,
				Cap:       2,
			},
			HonorValue: map[model.Scope]float64{
				model.ScopeNational:   2,
				model.ScopeProvincial: 1,
				model.ScopeSchool:     0.2,
			},
			CollectiveFactor: 0.5,
			HonorCap:         2,
			SocialRoleCoefficient: map[model.SocialRole]float64{
				model.SocialExec:      2,
				model.SocialPresidium: 1.5,
				model.SocialHead:      1,
				model.SocialDeputy:    0.75,
				model.SocialMember:    0.5,
			},
			RatingScale: 100,
			SocialCap:   2,
			// Runner-up and third sit between the champion and top 8 values.
			SportValue: map[model.Scope]map[model.SportResult]float64{
				model.ScopeInternational: {
					model.ResultChampion: 8, model.ResultRunnerUp: 6.5, model.ResultThird: 5, model.ResultTop8: 3.5,
				},
				model.ScopeNational: {
					model.ResultChampion: 5, model.ResultRunnerUp: 3.5, model.ResultThird: 2, model.ResultTop8: 1,
				},
			},
			IndividualSportDivisor: 3,
		},
	}
}

// Clone returns a deep copy of r.
func (r *Ruleset) Clone() *Ruleset {
	c := *r
	a, p := &c.Academic, &c.Performance

	a.PublicationBase = maps.Clone(r.Academic.PublicationBase)
	a.CategoryLimits = maps.Clone(r.Academic.CategoryLimits)
	a.CompetitionBase = cloneNested(r.Academic.CompetitionBase)
	a.SpecialCompetitions = slices.Clone(r.Academic.SpecialCompetitions)
	a.SpecialRankDivisors = slices.Clone(r.Academic.SpecialRankDivisors)
	a.InnovationValue = cloneNested(r.Academic.InnovationValue)

	p.Internship = maps.Clone(r.Performance.Internship)
	p.Military = slices.Clone(r.Performance.Military)
	p.Volunteer.Awards = cloneNested(r.Performance.Volunteer.Awards)
	p.HonorValue = maps.Clone(r.Performance.HonorValue)
	p.SocialRoleCoefficient = maps.Clone(r.Performance.SocialRoleCoefficient)
	p.SportValue = cloneNested(r.Performance.SportValue)
	return &c
}

func cloneNested[K, J comparable, V any](m map[K]map[J]V) map[K]map[J]V {
	if m == nil {
		return nil
	}
	out := make(map[K]map[J]V, len(m))
	for k, inner := range m {
		out[k] = maps.Clone(inner)
	}
	return out
}
