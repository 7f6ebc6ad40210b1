package matchmaking

import (
	"sort"

	"github.com/Dosada05/fight-league/models"
)

// fallbackWeight scales scores from the widened-tier pass so they never outrank a
// primary-pass candidate of equal fit.
const fallbackWeight = 0.8

type Suggestion struct {
	Fighter       models.RankingEntry `json:"fighter"`
	Compatibility CompatibilityResult `json:"compatibility"`
	Fallback      bool                `json:"fallback,omitempty"`
}

// RecentOpponents returns the distinct opponent names among the first window records,
// which must be ordered newest first.
func RecentOpponents(newestFirst []models.FightRecord, window int) []string {
	if window > len(newestFirst) {
		window = len(newestFirst)
	}
	seen := make(map[string]struct{}, window)
	names := make([]string, 0, window)
	for _, r := range newestFirst[:window] {
		if _, ok := seen[r.OpponentName]; ok {
			continue
		}
		seen[r.OpponentName] = struct{}{}
		names = append(names, r.OpponentName)
	}
	return names
}

// Suggest scores every candidate in pool against requester and returns the best
// SuggestionLimit, highest score first. The requester, rejected candidates, candidates
// outside the optional criteria bounds and, when c.AvoidRecentOpponents is set, anyone
// named in recentOpponents are left out. Ties keep pool order.
func Suggest(requester models.RankingEntry, pool []models.RankingEntry, recentOpponents []string, c Criteria) ([]Suggestion, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return suggest(requester, pool, recentOpponents, c, 1), nil
}

func suggest(requester models.RankingEntry, pool []models.RankingEntry, recentOpponents []string, c Criteria, weight float64) []Suggestion {
	avoid := make(map[string]struct{})
	if c.AvoidRecentOpponents {
		window := c.RecentOpponentWindow
		if window > len(recentOpponents) {
			window = len(recentOpponents)
		}
		for _, name := range recentOpponents[:window] {
			avoid[name] = struct{}{}
		}
	}

	out := make([]Suggestion, 0)
	for _, candidate := range pool {
		if candidate.ID == requester.ID {
			continue
		}
		if !withinBounds(candidate, c) {
			continue
		}
		if _, ok := avoid[candidate.Name]; ok {
			continue
		}
		res := Score(requester, candidate, c)
		if !res.Eligible() {
			continue
		}
		res.Score *= weight
		out = append(out, Suggestion{Fighter: candidate, Compatibility: res, Fallback: weight < 1})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Compatibility.Score > out[j].Compatibility.Score
	})
	if len(out) > SuggestionLimit {
		out = out[:SuggestionLimit]
	}
	return out
}

func withinBounds(e models.RankingEntry, c Criteria) bool {
	if c.WeightClass != "" && e.WeightClass != c.WeightClass {
		return false
	}
	if c.MinRank != nil && e.Rank < *c.MinRank {
		return false
	}
	if c.MaxRank != nil && e.Rank > *c.MaxRank {
		return false
	}
	if c.MinPoints != nil && e.Points < *c.MinPoints {
		return false
	}
	if c.MaxPoints != nil && e.Points > *c.MaxPoints {
		return false
	}
	return true
}

// AutoAssign picks the single best partner of the given kind. When the primary pass
// finds nobody, it retries with one more tier of tolerance at a reduced weight.
func AutoAssign(kind Kind, requester models.RankingEntry, pool []models.RankingEntry, recentOpponents []string, base Criteria) (*Suggestion, error) {
	c, err := base.ForKind(kind)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	found := suggest(requester, pool, recentOpponents, c, 1)
	if len(found) == 0 {
		c.TierTolerance++
		found = suggest(requester, pool, recentOpponents, c, fallbackWeight)
	}
	if len(found) == 0 {
		return nil, ErrNoCompatibleOpponent
	}
	best := found[0]
	return &best, nil
}
