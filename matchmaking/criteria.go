package matchmaking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCriteria      = errors.New("invalid matchmaking criteria")
	ErrNoCompatibleOpponent = errors.New("no compatible opponent found")
)

const (
	DefaultRankWindow           = 3
	DefaultPointsWindow         = 30
	DefaultRecentOpponentWindow = 5
	SuggestionLimit             = 5

	sparringRankWindow = 5
)

// Criteria is the full set of options a suggestion or auto-assign request may carry.
// WeightClass and the optional rank and points bounds narrow the candidate pool before
// scoring; the windows and TierTolerance are the hard filters applied pairwise by Score.
type Criteria struct {
	WeightClass string `json:"weight_class,omitempty"`
	MinRank     *int   `json:"min_rank,omitempty"`
	MaxRank     *int   `json:"max_rank,omitempty"`
	MinPoints   *int   `json:"min_points,omitempty"`
	MaxPoints   *int   `json:"max_points,omitempty"`
	// Timezone overrides the requester's stored timezone when set.
	Timezone             string `json:"timezone,omitempty"`
	AvoidRecentOpponents bool   `json:"avoid_recent_opponents"`
	RecentOpponentWindow int    `json:"recent_opponent_window"`

	RankWindow    int `json:"rank_window"`
	PointsWindow  int `json:"points_window"`
	TierTolerance int `json:"tier_tolerance"`
}

// DefaultCriteria returns the competitive-opponent defaults.
func DefaultCriteria() Criteria {
	return Criteria{
		AvoidRecentOpponents: true,
		RecentOpponentWindow: DefaultRecentOpponentWindow,
		RankWindow:           DefaultRankWindow,
		PointsWindow:         DefaultPointsWindow,
	}
}

func (c Criteria) Validate() error {
	switch {
	case c.RankWindow < 0:
		return fmt.Errorf("%w: rank window must not be negative", ErrInvalidCriteria)
	case c.PointsWindow < 0:
		return fmt.Errorf("%w: points window must not be negative", ErrInvalidCriteria)
	case c.TierTolerance < 0:
		return fmt.Errorf("%w: tier tolerance must not be negative", ErrInvalidCriteria)
	case c.RecentOpponentWindow < 0:
		return fmt.Errorf("%w: recent opponent window must not be negative", ErrInvalidCriteria)
	case c.MinRank != nil && *c.MinRank < 1:
		return fmt.Errorf("%w: min rank must be at least 1", ErrInvalidCriteria)
	case c.MinRank != nil && c.MaxRank != nil && *c.MinRank > *c.MaxRank:
		return fmt.Errorf("%w: min rank %d is above max rank %d", ErrInvalidCriteria, *c.MinRank, *c.MaxRank)
	case c.MinPoints != nil && c.MaxPoints != nil && *c.MinPoints > *c.MaxPoints:
		return fmt.Errorf("%w: min points %d is above max points %d", ErrInvalidCriteria, *c.MinPoints, *c.MaxPoints)
	}
	return nil
}

// Kind selects an auto-assignment variant.
type Kind string

const (
	KindOpponent Kind = "opponent"
	KindSparring Kind = "sparring"
)

// ForKind widens c the way the auto-assignment variant requires.
func (c Criteria) ForKind(kind Kind) (Criteria, error) {
	switch kind {
	case KindOpponent:
		c.RankWindow = DefaultRankWindow
		c.TierTolerance = 0
	case KindSparring:
		c.RankWindow = sparringRankWindow
		c.TierTolerance = 1
	default:
		return c, fmt.Errorf("%w: unknown assignment kind %q", ErrInvalidCriteria, kind)
	}
	return c, nil
}
