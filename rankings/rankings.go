// Package rankings orders fighters best-first from their standings and fight history.
package rankings

import (
	"sort"

	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/tiers"
)

// RecentFormSize is how many of the newest results make up a fighter's recent form.
const RecentFormSize = 5

// Rank builds the ranking for the given population. Records may arrive in any order and
// may include fighters outside standings; those are ignored. Ranks are assigned 1..N with
// no ties: the comparator chain breaks ties, and the sort is stable so fully-equal
// fighters keep their input order.
func Rank(standings []models.FighterStanding, records []models.FightRecord) []models.RankingEntry {
	if len(standings) == 0 {
		return []models.RankingEntry{}
	}

	byFighter := GroupByFighter(records)

	entries := make([]models.RankingEntry, len(standings))
	for i, s := range standings {
		entries[i] = BuildEntry(s, byFighter[s.ID])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return compare(&entries[i], &entries[j]) < 0
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// GroupByFighter splits records per fighter, each slice ordered newest-first.
func GroupByFighter(records []models.FightRecord) map[int][]models.FightRecord {
	byFighter := make(map[int][]models.FightRecord)
	for _, r := range records {
		byFighter[r.FighterID] = append(byFighter[r.FighterID], r)
	}
	for id := range byFighter {
		SortNewestFirst(byFighter[id])
	}
	return byFighter
}

// SortNewestFirst orders records by date descending, falling back to id descending for
// bouts recorded with the same date.
func SortNewestFirst(records []models.FightRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
}

// BuildEntry derives the per-fighter fields from records already ordered newest-first.
// Rank is left zero.
func BuildEntry(s models.FighterStanding, records []models.FightRecord) models.RankingEntry {
	if !s.Tier.Valid() {
		s.Tier = tiers.ForPoints(s.Points)
	}
	s.RecomputePercentages()

	results := make([]models.FightResult, len(records))
	for i, r := range records {
		results[i] = r.Result
	}

	entry := models.RankingEntry{
		FighterStanding: s,
		RecentForm:      RecentForm(results),
		HeadToHead:      make(map[string]models.HeadToHead),
	}
	entry.CurrentStreak, entry.ConsecutiveLosses, _ = Streak(results)

	var pointsSum int
	for _, r := range records {
		pointsSum += r.PointsEarned
		h := entry.HeadToHead[r.OpponentName]
		switch r.Result {
		case models.ResultWin:
			h.Wins++
		case models.ResultLoss:
			h.Losses++
		default:
			continue
		}
		entry.HeadToHead[r.OpponentName] = h
	}
	if len(records) > 0 {
		entry.AvgOpponentPoints = float64(pointsSum) / float64(len(records))
	}
	return entry
}

// RecentForm returns up to RecentFormSize of the newest results.
func RecentForm(newestFirst []models.FightResult) []models.FightResult {
	n := len(newestFirst)
	if n > RecentFormSize {
		n = RecentFormSize
	}
	form := make([]models.FightResult, n)
	copy(form, newestFirst[:n])
	return form
}

// Streak scans newest-first results. current is positive for a run of wins, negative for
// a run of losses and 0 when the newest result is a draw. A draw breaks either run.
func Streak(newestFirst []models.FightResult) (current, consecutiveLosses, consecutiveWins int) {
	if len(newestFirst) == 0 {
		return 0, 0, 0
	}
	head := newestFirst[0]
	if head == models.ResultDraw {
		return 0, 0, 0
	}
	run := 0
	for _, r := range newestFirst {
		if r != head {
			break
		}
		run++
	}
	if head == models.ResultWin {
		return run, 0, run
	}
	return -run, run, 0
}

// FormScore is the recent-form tiebreak value. The running total is multiplied by the
// positional weight at every step, so earlier positions compound.
// TODO: product review of the compounding weight; a linear sum of value*weight may be intended.
func FormScore(form []models.FightResult) int {
	score := 0
	for i, r := range form {
		weight := RecentFormSize - i
		if weight < 1 {
			break
		}
		score = (score + resultValue(r)) * weight
	}
	return score
}

func resultValue(r models.FightResult) int {
	switch r {
	case models.ResultWin:
		return 3
	case models.ResultDraw:
		return 1
	default:
		return 0
	}
}

// compare returns a negative number when a ranks above b, positive when below, 0 when the
// whole chain is exhausted.
func compare(a, b *models.RankingEntry) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}

	aVsB, aHas := a.HeadToHead[b.Name]
	bVsA, bHas := b.HeadToHead[a.Name]
	if (aHas || bHas) && aVsB.Wins != bVsA.Wins {
		return bVsA.Wins - aVsB.Wins
	}

	if c := compareFloatDesc(a.KOPercentage, b.KOPercentage); c != 0 {
		return c
	}
	if c := compareFloatDesc(a.AvgOpponentPoints, b.AvgOpponentPoints); c != 0 {
		return c
	}

	if fa, fb := FormScore(a.RecentForm), FormScore(b.RecentForm); fa != fb {
		return fb - fa
	}

	return compareFloatDesc(a.WinPercentage, b.WinPercentage)
}

func compareFloatDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
