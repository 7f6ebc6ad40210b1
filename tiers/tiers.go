// Package tiers maps league points to tier bands and decides streak-based
// demotion and promotion.
package tiers

import (
	"github.com/Dosada05/fight-league/models"
)

// StreakThreshold is the run length that triggers a demotion or a promotion back.
const StreakThreshold = 5

// Lower bounds of each band, ascending. Everything below SemiProMin is Amateur.
const (
	SemiProMin   = 30
	ProMin       = 70
	ContenderMin = 140
	EliteMin     = 280
)

// ForPoints maps a points value to its band. It is total over all integers.
func ForPoints(points int) models.Tier {
	switch {
	case points >= EliteMin:
		return models.TierElite
	case points >= ContenderMin:
		return models.TierContender
	case points >= ProMin:
		return models.TierPro
	case points >= SemiProMin:
		return models.TierSemiPro
	default:
		return models.TierAmateur
	}
}

func ShouldDemote(consecutiveLosses int) bool {
	return consecutiveLosses >= StreakThreshold
}

func ShouldPromoteBack(consecutiveWins int) bool {
	return consecutiveWins >= StreakThreshold
}

// Down returns the band below t. Amateur and unknown tiers stay Amateur.
func Down(t models.Tier) models.Tier {
	i := t.Index()
	if i <= 0 {
		return models.TierAmateur
	}
	return models.Tiers[i-1]
}

// Up returns the band above t. Elite stays Elite; unknown tiers become Amateur.
func Up(t models.Tier) models.Tier {
	i := t.Index()
	if i < 0 {
		return models.TierAmateur
	}
	if i >= len(models.Tiers)-1 {
		return models.TierElite
	}
	return models.Tiers[i+1]
}

// Evaluate re-derives the stored tier after a fight has been applied to s.
//
// Demotion and promotion-back move one band from the stored tier and ignore the
// points-implied tier. A fighter is only promoted back while flagged as demoted; the
// flag clears once the stored tier catches up with the points-implied one. A fighter
// that is not demoted simply follows ForPoints.
func Evaluate(s *models.FighterStanding, consecutiveLosses, consecutiveWins int) {
	implied := ForPoints(s.Points)
	if !s.Tier.Valid() {
		s.Tier = implied
		s.Demoted = false
	}

	switch {
	case ShouldDemote(consecutiveLosses):
		s.Tier = Down(s.Tier)
		s.Demoted = s.Tier.Index() < implied.Index()
	case s.Demoted && ShouldPromoteBack(consecutiveWins):
		s.Tier = Up(s.Tier)
		s.Demoted = s.Tier.Index() < implied.Index()
	case s.Demoted:
		if s.Tier.Index() >= implied.Index() {
			s.Tier = implied
			s.Demoted = false
		}
	default:
		s.Tier = implied
	}
}

// ApplyFight folds one bout into the standing: points delta, counters, percentages and
// the tier. The streak counts must already include this bout.
func ApplyFight(s *models.FighterStanding, result models.FightResult, method models.FightMethod, pointsDelta, consecutiveLosses, consecutiveWins int) {
	s.Points += pointsDelta
	switch result {
	case models.ResultWin:
		s.Wins++
		if method.IsKnockout() {
			s.Knockouts++
		}
	case models.ResultLoss:
		s.Losses++
	case models.ResultDraw:
		s.Draws++
	}
	s.RecomputePercentages()
	Evaluate(s, consecutiveLosses, consecutiveWins)
}

// NewStanding returns the default standing for a freshly created fighter profile.
func NewStanding(id int, name, weightClass string) models.FighterStanding {
	return models.FighterStanding{
		ID:          id,
		Name:        name,
		WeightClass: weightClass,
		Tier:        models.TierAmateur,
	}
}
