package scoring

import (
	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
)

func volunteerScore(pr *rules.PerformanceRules, v model.Volunteer) float64 {
	vr := &pr.Volunteer

	var hoursPart float64
	if eff := effectiveHours(vr, v); eff >= vr.HoursThreshold {
		hoursPart = min(vr.HoursCap, (eff-vr.HoursThreshold)/vr.HoursPerStep*vr.PointsPerStep)
	}

	var awardsPart float64
	for _, a := range v.Awards {
		awardsPart = max(awardsPart, pr.VolunteerAwardValue(a.Role, a.Level))
	}
	awardsPart = min(awardsPart, vr.AwardsCap)

	return min(vr.Cap, hoursPart+awardsPart)
}

// effectiveHours weighs segmented service: normal segments count in full,
// every other kind at OtherSegmentWeight.
func effectiveHours(vr *rules.VolunteerRules, v model.Volunteer) float64 {
	if len(v.Segments) == 0 {
		return v.Hours
	}
	return sumOf(v.Segments, func(s model.VolunteerSegment) float64 {
		if s.Type == model.SegmentNormal {
			return s.Hours
		}
		return s.Hours * vr.OtherSegmentWeight
	})
}

// honorScore keeps the best honor of each year.
func honorScore(pr *rules.PerformanceRules, honors []model.Honor) float64 {
	perYear := newBestByKey[int](func(c, cur float64) bool { return c > cur })
	for _, h := range honors {
		perYear.offer(h.Year, pr.HonorPoints(h))
	}
	return min(pr.HonorCap, sumOf(perYear.values(), identity))
}

// socialWorkScore keeps the best position of each year. Ratings outside
// [0, RatingScale] are clamped.
func socialWorkScore(pr *rules.PerformanceRules, roles []model.SocialWork) float64 {
	perYear := newBestByKey[int](func(c, cur float64) bool { return c > cur })
	for _, w := range roles {
		rating := clamp(w.Rating, 0, pr.RatingScale)
		perYear.offer(w.Year, pr.SocialCoefficient(w.Role)*rating/pr.RatingScale)
	}
	return min(pr.SocialCap, sumOf(perYear.values(), identity))
}

func sportScore(pr *rules.PerformanceRules, sports []model.Sport) float64 {
	return sumOf(sports, func(s model.Sport) float64 {
		points := pr.SportPoints(s.Scope, s.Result)
		if !s.Team {
			return points / pr.IndividualSportDivisor
		}
		if s.TeamSize < 1 {
			return 0
		}
		return points / float64(s.TeamSize)
	})
}

func identity(v float64) float64 { return v }
