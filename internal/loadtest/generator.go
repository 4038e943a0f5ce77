package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/pkg/logger"
)

// Constants for academic base generation.
const (
	baseMin   = 55.0
	baseRange = 25.0
)

// Portfolio profiles. Most applicants have a thin record; a few are strong.
const (
	profileThin = iota
	profileTypical
	profileStrong
	profileSpecialTalent
)

var (
	categories = []model.PublicationCategory{
		model.CategoryA, model.CategoryB, model.CategoryC,
		model.CategoryTopJournal, model.CategoryHighLevelChinese, model.CategoryInfoComm,
	}
	levels      = []model.CompetitionLevel{model.LevelAPlus, model.LevelA, model.LevelAMinus}
	awards      = []model.AwardTier{model.AwardSpecial, model.AwardFirst, model.AwardSecond, model.AwardThird, model.AwardHonorable}
	scopes      = []model.Scope{model.ScopeNational, model.ScopeProvincial, model.ScopeSchool}
	socialRoles = []model.SocialRole{model.SocialExec, model.SocialPresidium, model.SocialHead, model.SocialDeputy, model.SocialMember}
	sportScopes = []model.Scope{model.ScopeInternational, model.ScopeNational}
	results     = []model.SportResult{model.ResultChampion, model.ResultRunnerUp, model.ResultThird, model.ResultTop8}
)

// namespace keeps generated application ids stable for a given seed.
var namespace = uuid.MustParse("6f1c0d9e-3b52-4a8e-9d0f-1f6a3c2b7e44")

// generateApplications creates config.Applications portfolios. The same seed
// always yields the same applications.
func generateApplications(ctx context.Context, config *Config, stats *Stats) ([]model.Application, error) {
	logger.Get().Info(ctx, "generating applications", logger.Int("applications", config.Applications))

	apps := make([]model.Application, config.Applications)
	workerCount := max(1, min(config.Workers, config.Applications))
	perWorker := config.Applications / workerCount

	type genResult struct {
		index int
		app   model.Application
	}
	resultChan := make(chan genResult, config.Applications)

	for worker := range workerCount {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.Applications // Last worker gets the remainder
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				resultChan <- genResult{index: i, app: generateApplication(config.Seed, i, config.Ruleset)}
			}
		}(start, end)
	}

	for range config.Applications {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case r := <-resultChan:
			apps[r.index] = r.app
		}
	}

	stats.Generated = len(apps)
	logger.Get().Info(ctx, "generated applications", logger.Int("count", len(apps)))
	return apps, nil
}

// generateApplication builds application index of the run seeded with seed.
func generateApplication(seed uint64, index int, ruleset string) model.Application {
	rng := rand.New(rand.NewPCG(seed, uint64(index))) //nolint:gosec // synthetic load, not security sensitive
	key := strconv.FormatUint(seed, 10) + "/" + strconv.Itoa(index)

	app := model.Application{
		ID:             uuid.NewSHA1(namespace, []byte(key)).String(),
		Applicant:      "applicant-" + strconv.Itoa(index),
		RulesetVersion: ruleset,
		// Two decimals, so that equal composites and shared ranks do occur.
		AcademicBase: float64(int((baseMin+rng.Float64()*baseRange)*100)) / 100,
	}

	switch pickProfile(rng) {
	case profileThin:
		app.Performance.Volunteer.Hours = float64(rng.IntN(60))
	case profileTypical:
		app.Academic = typicalAcademic(rng)
		app.Performance = typicalPerformance(rng)
	case profileStrong:
		app.Academic = typicalAcademic(rng)
		app.Academic.Publications = append(app.Academic.Publications, model.Publication{
			Title: "strong-" + strconv.Itoa(index), Category: model.CategoryTopJournal, AuthorRank: 1, TotalAuthors: 1 + rng.IntN(3),
		})
		app.Performance = typicalPerformance(rng)
		app.Performance.Internship.Duration = model.InternshipYear
	case profileSpecialTalent:
		app.Academic.SpecialTalentPassed = true
		app.Performance = typicalPerformance(rng)
	}
	return app
}

func pickProfile(rng *rand.Rand) int {
	switch n := rng.IntN(100); {
	case n < 40:
		return profileThin
	case n < 90:
		return profileTypical
	case n < 98:
		return profileStrong
	default:
		return profileSpecialTalent
	}
}

func typicalAcademic(rng *rand.Rand) model.AcademicInputs {
	var in model.AcademicInputs
	for i := range rng.IntN(3) {
		total := 1 + rng.IntN(4)
		in.Publications = append(in.Publications, model.Publication{
			Title:        "paper-" + strconv.Itoa(i),
			Category:     pick(rng, categories),
			AuthorRank:   1 + rng.IntN(total),
			TotalAuthors: total,
		})
	}
	if rng.IntN(4) == 0 {
		in.Patents = append(in.Patents, model.Patent{Title: "patent", AuthorRank: 1, TotalAuthors: 1 + rng.IntN(3)})
	}
	for i := range rng.IntN(4) {
		c := model.Competition{
			Name:  "contest-" + strconv.Itoa(rng.IntN(6)),
			Level: pick(rng, levels),
			Award: pick(rng, awards),
		}
		if rng.IntN(2) == 0 {
			c.Team = true
			c.TeamSize = 2 + rng.IntN(4)
			c.TeamRank = 1 + rng.IntN(c.TeamSize)
		}
		if i > 0 && rng.IntN(5) == 0 {
			c.WorkKey = "work-0"
		}
		in.Competitions = append(in.Competitions, c)
	}
	if rng.IntN(3) == 0 {
		in.Innovation = append(in.Innovation, model.InnovationProject{
			Name:   "project",
			Level:  pick(rng, scopes),
			Role:   pick(rng, []model.ProjectRole{model.RoleLead, model.RoleMember}),
			Status: pick(rng, []model.ProjectStatus{model.StatusCompleted, model.StatusOngoing}),
		})
	}
	return in
}

func typicalPerformance(rng *rand.Rand) model.PerformanceInputs {
	var in model.PerformanceInputs
	if rng.IntN(3) == 0 {
		in.Internship.Duration = model.InternshipSemester
	}
	if rng.IntN(20) == 0 {
		in.Military.Years = 1 + rng.IntN(3)
	}
	in.Volunteer.Hours = float64(rng.IntN(300))
	for range rng.IntN(3) {
		in.Honors = append(in.Honors, model.Honor{
			Title: "honor",
			Year:  2021 + rng.IntN(4),
			Level: pick(rng, scopes),
		})
	}
	for range rng.IntN(3) {
		in.SocialWork = append(in.SocialWork, model.SocialWork{
			Organization: "union",
			Year:         2021 + rng.IntN(4),
			Role:         pick(rng, socialRoles),
			Rating:       float64(60 + rng.IntN(41)),
		})
	}
	if rng.IntN(10) == 0 {
		in.Sports = append(in.Sports, model.Sport{
			Event:  "athletics",
			Scope:  pick(rng, sportScopes),
			Result: pick(rng, results),
		})
	}
	return in
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.IntN(len(from))]
}
