package models

import "time"

type MatchStatus string

const (
	MatchPending    MatchStatus = "Pending"
	MatchScheduled  MatchStatus = "Scheduled"
	MatchInProgress MatchStatus = "In Progress"
	MatchCompleted  MatchStatus = "Completed"
	MatchBye        MatchStatus = "Bye"
	MatchNoShow     MatchStatus = "No Show"
)

// Terminal reports whether no further transitions are allowed from s.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchBye || s == MatchNoShow
}

// BracketMatch is one cell of a single-elimination grid. A nil fighter slot means a bye
// or a winner not yet determined.
type BracketMatch struct {
	ID              int         `json:"id" db:"id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	Round           int         `json:"round" db:"round"`
	MatchNumber     int         `json:"match_number" db:"match_number"`
	Fighter1ID      *int        `json:"fighter1_id,omitempty" db:"fighter1_id"`
	Fighter2ID      *int        `json:"fighter2_id,omitempty" db:"fighter2_id"`
	WinnerID        *int        `json:"winner_id,omitempty" db:"winner_id"`
	ScheduledDate   *time.Time  `json:"scheduled_date,omitempty" db:"scheduled_date"`
	DeadlineDate    time.Time   `json:"deadline_date" db:"deadline_date"`
	Fighter1CheckIn *time.Time  `json:"fighter1_check_in,omitempty" db:"fighter1_check_in"`
	Fighter2CheckIn *time.Time  `json:"fighter2_check_in,omitempty" db:"fighter2_check_in"`
	Status          MatchStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// HasFighter reports whether fighterID occupies either slot.
func (m *BracketMatch) HasFighter(fighterID int) bool {
	return (m.Fighter1ID != nil && *m.Fighter1ID == fighterID) ||
		(m.Fighter2ID != nil && *m.Fighter2ID == fighterID)
}

// Opponent returns the fighter in the other slot, or nil.
func (m *BracketMatch) Opponent(fighterID int) *int {
	switch {
	case m.Fighter1ID != nil && *m.Fighter1ID == fighterID:
		return m.Fighter2ID
	case m.Fighter2ID != nil && *m.Fighter2ID == fighterID:
		return m.Fighter1ID
	default:
		return nil
	}
}
