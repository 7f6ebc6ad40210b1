package matchmaking

import (
	"fmt"

	"github.com/Dosada05/fight-league/models"
)

const (
	baseScore       = 100.0
	tierMatchBonus  = 10.0
	rankDiffPenalty = 5.0
	pointsPenalty   = 0.5
	timezoneBonus   = 10.0
	formMatchBonus  = 5.0
	maxScore        = 100.0
	minScore        = 0.0
)

// CompatibilityResult explains how well a candidate fits a requester. RankDiff and
// PointsDiff are -1 when a hard filter rejected the candidate.
type CompatibilityResult struct {
	Score         float64  `json:"score"`
	Reasons       []string `json:"reasons"`
	RankDiff      int      `json:"rank_diff"`
	PointsDiff    int      `json:"points_diff"`
	TimezoneMatch bool     `json:"timezone_match"`
}

// Eligible reports whether the candidate passed every hard filter.
func (r CompatibilityResult) Eligible() bool {
	return r.Score > 0
}

func rejected(reason string) CompatibilityResult {
	return CompatibilityResult{Score: 0, Reasons: []string{reason}, RankDiff: -1, PointsDiff: -1}
}

// Score rates candidate as an opponent for requester using each entry's Rank.
//
// Weight class, tier (within c.TierTolerance bands), rank (within c.RankWindow) and
// points (within c.PointsWindow) are hard filters and are symmetric in the two fighters.
// Candidates that pass start at 100 and are adjusted by the soft factors, then clamped
// to [0, 100].
func Score(requester, candidate models.RankingEntry, c Criteria) CompatibilityResult {
	if requester.WeightClass != candidate.WeightClass {
		return rejected(fmt.Sprintf("different weight class (%s vs %s)", requester.WeightClass, candidate.WeightClass))
	}
	tierGap := abs(requester.Tier.Index() - candidate.Tier.Index())
	if tierGap > c.TierTolerance {
		return rejected(fmt.Sprintf("tier mismatch (%s vs %s)", requester.Tier, candidate.Tier))
	}
	rankDiff := abs(requester.Rank - candidate.Rank)
	if rankDiff > c.RankWindow {
		return rejected(fmt.Sprintf("rank difference %d exceeds %d", rankDiff, c.RankWindow))
	}
	pointsDiff := abs(requester.Points - candidate.Points)
	if pointsDiff > c.PointsWindow {
		return rejected(fmt.Sprintf("points difference %d exceeds %d", pointsDiff, c.PointsWindow))
	}

	res := CompatibilityResult{RankDiff: rankDiff, PointsDiff: pointsDiff}
	score := baseScore

	if tierGap == 0 {
		score += tierMatchBonus
		res.Reasons = append(res.Reasons, fmt.Sprintf("same tier (%s)", requester.Tier))
	}
	if rankDiff > 0 {
		score -= rankDiffPenalty * float64(rankDiff)
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d ranks apart", rankDiff))
	} else {
		res.Reasons = append(res.Reasons, "same rank")
	}
	if pointsDiff > 0 {
		score -= pointsPenalty * float64(pointsDiff)
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d points apart", pointsDiff))
	}

	requesterZone := requester.Timezone
	if c.Timezone != "" {
		requesterZone = c.Timezone
	}
	if TimezonesCompatible(requesterZone, candidate.Timezone) {
		score += timezoneBonus
		res.TimezoneMatch = true
		res.Reasons = append(res.Reasons, "compatible timezone")
	}

	if rf, cf := ClassifyForm(requester.RecentForm), ClassifyForm(candidate.RecentForm); rf != FormUnknown && rf == cf {
		score += formMatchBonus
		res.Reasons = append(res.Reasons, fmt.Sprintf("both in %s form", rf))
	}

	res.Score = clamp(score, minScore, maxScore)
	return res
}

// Form is a coarse classification of a fighter's recent results.
type Form string

const (
	FormHot     Form = "hot"
	FormCold    Form = "cold"
	FormGood    Form = "good"
	FormPoor    Form = "poor"
	FormAverage Form = "average"
	// FormUnknown never counts as matching, not even itself.
	FormUnknown Form = "unknown"
)

// ClassifyForm looks at up to the five most recent results.
func ClassifyForm(recent []models.FightResult) Form {
	if len(recent) == 0 {
		return FormUnknown
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	var wins, losses int
	for _, r := range recent {
		switch r {
		case models.ResultWin:
			wins++
		case models.ResultLoss:
			losses++
		}
	}
	switch {
	case wins >= 4:
		return FormHot
	case losses >= 4:
		return FormCold
	case wins > losses:
		return FormGood
	case losses > wins:
		return FormPoor
	default:
		return FormAverage
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
