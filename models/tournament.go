package models

import "time"

// TournamentStatus mirrors the tournament_status enum in the database.
type TournamentStatus string

const (
	StatusOpen       TournamentStatus = "Open"
	StatusInProgress TournamentStatus = "In Progress"
	StatusCompleted  TournamentStatus = "Completed"
	StatusCancelled  TournamentStatus = "Cancelled"
)

type TournamentFormat string

const FormatSingleElimination TournamentFormat = "SingleElimination"

// Tournament is administered elsewhere; the bracket engine only reads its identity and
// writes status and winner.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Format          TournamentFormat `json:"format" db:"format"`
	WeightClass     string           `json:"weight_class" db:"weight_class"`
	MinPoints       *int             `json:"min_points,omitempty" db:"min_points"`
	MaxPoints       *int             `json:"max_points,omitempty" db:"max_points"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	EndDate         time.Time        `json:"end_date" db:"end_date"`
	Status          TournamentStatus `json:"status" db:"status"`
	WinnerID        *int             `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "Registered"
	ParticipantCheckedIn  ParticipantStatus = "Checked In"
	ParticipantActive     ParticipantStatus = "Active"
	ParticipantEliminated ParticipantStatus = "Eliminated"
	ParticipantWithdrawn  ParticipantStatus = "Withdrawn"
	ParticipantBye        ParticipantStatus = "Bye"
)

type TournamentParticipant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	FighterID    int               `json:"fighter_id" db:"fighter_id"`
	Seed         int               `json:"seed" db:"seed"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// TournamentResult is written exactly once, when the final resolves.
type TournamentResult struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	ChampionID     int       `json:"champion_id" db:"champion_id"`
	RunnerUpID     *int      `json:"runner_up_id,omitempty" db:"runner_up_id"`
	ThirdPlaceID   *int      `json:"third_place_id,omitempty" db:"third_place_id"`
	CompletionDate time.Time `json:"completion_date" db:"completion_date"`
}
