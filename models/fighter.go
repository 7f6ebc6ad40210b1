package models

import "time"

// Tier is a league band. The zero value is not a valid tier.
type Tier string

const (
	TierAmateur   Tier = "Amateur"
	TierSemiPro   Tier = "Semi-Pro"
	TierPro       Tier = "Pro"
	TierContender Tier = "Contender"
	TierElite     Tier = "Elite"
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{TierAmateur, TierSemiPro, TierPro, TierContender, TierElite}

// Index returns the position of t in Tiers, or -1 for an unknown tier.
func (t Tier) Index() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool {
	return t.Index() >= 0
}

type FightResult string

const (
	ResultWin  FightResult = "Win"
	ResultLoss FightResult = "Loss"
	ResultDraw FightResult = "Draw"
)

// Mirror returns the result as seen by the opponent.
func (r FightResult) Mirror() FightResult {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return r
	}
}

// Code is the single-letter form used in recent-form strings.
func (r FightResult) Code() string {
	switch r {
	case ResultWin:
		return "W"
	case ResultLoss:
		return "L"
	case ResultDraw:
		return "D"
	default:
		return "?"
	}
}

// ResultFromCode is the inverse of Code.
func ResultFromCode(code string) (FightResult, bool) {
	switch code {
	case "W":
		return ResultWin, true
	case "L":
		return ResultLoss, true
	case "D":
		return ResultDraw, true
	default:
		return "", false
	}
}

func (r FightResult) Valid() bool {
	return r == ResultWin || r == ResultLoss || r == ResultDraw
}

type FightMethod string

const (
	MethodKO         FightMethod = "KO"
	MethodTKO        FightMethod = "TKO"
	MethodDecision   FightMethod = "Decision"
	MethodSubmission FightMethod = "Submission"
)

// IsKnockout reports whether the method counts toward the knockout tally.
func (m FightMethod) IsKnockout() bool {
	return m == MethodKO || m == MethodTKO
}

// FighterStanding is one fighter's league state.
type FighterStanding struct {
	ID            int     `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	WeightClass   string  `json:"weight_class" db:"weight_class"`
	Tier          Tier    `json:"tier" db:"tier"`
	Demoted       bool    `json:"demoted" db:"demoted"`
	Points        int     `json:"points" db:"points"`
	Wins          int     `json:"wins" db:"wins"`
	Losses        int     `json:"losses" db:"losses"`
	Draws         int     `json:"draws" db:"draws"`
	Knockouts     int     `json:"knockouts" db:"knockouts"`
	WinPercentage float64 `json:"win_percentage" db:"win_percentage"`
	KOPercentage  float64 `json:"ko_percentage" db:"ko_percentage"`
	Timezone      string  `json:"timezone,omitempty" db:"timezone"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FightsTotal returns wins + losses + draws.
func (s FighterStanding) FightsTotal() int {
	return s.Wins + s.Losses + s.Draws
}

// RecomputePercentages refreshes the redundant percentage columns from the counters.
// Both are expressed in the 0..100 range.
func (s *FighterStanding) RecomputePercentages() {
	s.WinPercentage = 0
	if total := s.FightsTotal(); total > 0 {
		s.WinPercentage = float64(s.Wins) / float64(total) * 100
	}
	s.KOPercentage = 0
	if s.Wins > 0 {
		s.KOPercentage = float64(s.Knockouts) / float64(s.Wins) * 100
	}
}

// FightRecord is one completed bout from one fighter's perspective. Records are never mutated.
type FightRecord struct {
	ID           int         `json:"id" db:"id"`
	FighterID    int         `json:"fighter_id" db:"fighter_id"`
	OpponentName string      `json:"opponent_name" db:"opponent_name"`
	Result       FightResult `json:"result" db:"result"`
	Method       FightMethod `json:"method" db:"method"`
	PointsEarned int         `json:"points_earned" db:"points_earned"`
	Date         time.Time   `json:"date" db:"date"`
}
