package scoring

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
)

// publicationScore sums base x authorship ratio over titled papers. Limited
// categories (C by default) count only their first occurrences.
func publicationScore(ar *rules.AcademicRules, pubs []model.Publication) float64 {
	counted := make(map[model.PublicationCategory]int)
	var total float64
	for _, p := range pubs {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		venue := p.Venue()
		base := ar.PublicationValue(venue)
		if base == 0 {
			continue
		}
		if limit, ok := ar.CategoryLimit(venue); ok {
			counted[venue]++
			if counted[venue] > limit {
				continue
			}
		}
		total += base * authorshipRatio(ar.Attribution, p)
	}
	return total
}

func authorshipRatio(a rules.Attribution, p model.Publication) float64 {
	switch {
	case p.Independent || p.TotalAuthors <= 1:
		return a.Solo
	case p.CoFirst && (p.AuthorRank == 1 || p.AuthorRank == 2):
		return a.CoFirst
	case p.AuthorRank == 1:
		return a.First
	case p.AuthorRank == 2:
		return a.Second
	default:
		return 0
	}
}

func patentScore(ar *rules.AcademicRules, patents []model.Patent) float64 {
	return sumOf(patents, func(p model.Patent) float64 {
		switch {
		case p.AuthorRank != 1:
			return 0
		case p.TotalAuthors <= 1:
			return ar.PatentSole
		default:
			return ar.PatentSole * ar.PatentSharedRatio
		}
	})
}

func innovationScore(ar *rules.AcademicRules, projects []model.InnovationProject) float64 {
	total := sumOf(projects, func(p model.InnovationProject) float64 {
		if p.Status != model.StatusCompleted {
			return 0
		}
		return ar.InnovationProjectValue(p.Level, p.Role)
	})
	return min(total, ar.InnovationCap)
}

// workGroup identifies the entries that describe one piece of work. Entries
// without a WorkKey each form their own group.
type workGroup struct {
	key   string
	index int
}

func groupOf(i int, c model.Competition) workGroup {
	if k := strings.TrimSpace(c.WorkKey); k != "" {
		return workGroup{key: k, index: -1}
	}
	return workGroup{index: i}
}

type candidate struct {
	competition model.Competition
	base        float64
}

// competitionScore deduplicates entries per work, values the survivors,
// and sums the best CompetitionSlots of them with at most ExternalSlots
// externally organized. It also returns every survivor in ranked order.
func competitionScore(ar *rules.AcademicRules, comps []model.Competition) (float64, []model.CompetitionScore) {
	if len(comps) == 0 {
		return 0, nil
	}

	groups := newBestByKey[workGroup](func(c, cur candidate) bool { return c.base > cur.base })
	for i, c := range comps {
		groups.offer(groupOf(i, c), candidate{competition: c, base: ar.CompetitionValue(c.Level, c.Award)})
	}

	survivors := groups.values()
	ranked := make([]model.CompetitionScore, 0, len(survivors))
	for _, c := range survivors {
		ranked = append(ranked, model.CompetitionScore{
			Competition: c.competition,
			Base:        c.base,
			Value:       competitionValue(ar, c.competition, c.base),
		})
	}
	slices.SortStableFunc(ranked, func(a, b model.CompetitionScore) int {
		return cmp.Compare(b.Value, a.Value)
	})

	var total float64
	taken, external := 0, 0
	for i := range ranked {
		if taken == ar.CompetitionSlots {
			break
		}
		if ranked[i].Value <= 0 {
			break
		}
		if ranked[i].Competition.External {
			if external == ar.ExternalSlots {
				continue
			}
			external++
		}
		ranked[i].Selected = true
		taken++
		total += ranked[i].Value
	}
	return total, ranked
}

// competitionValue divides the base value by the candidate's share of the
// result.
func competitionValue(ar *rules.AcademicRules, c model.Competition, base float64) float64 {
	if base <= 0 {
		return 0
	}
	if !c.Team || c.PersonalProject {
		return base / ar.IndividualDivisor
	}
	if ar.IsSpecialCompetition(c.Name) {
		d := ar.SpecialRankDivisor(c.TeamRank)
		if d <= 0 {
			return 0
		}
		return base / d
	}
	switch {
	case c.TeamSize > ar.TeamMaxSize:
		if c.TeamRank < 1 || c.TeamRank > ar.LargeTeamRankLimit {
			return 0
		}
		return base / ar.LargeTeamDivisor
	case c.TeamSize >= ar.TeamMinSize:
		return base / float64(c.TeamSize)
	default:
		return base / ar.IndividualDivisor
	}
}
