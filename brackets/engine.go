package brackets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/fight-league/models"
)

var (
	ErrInsufficientParticipants = errors.New("at least 2 checked-in participants are required to generate a bracket")
	ErrUnsupportedFormat        = errors.New("unsupported tournament format")
	ErrTournamentNotOpen        = errors.New("tournament is not open for bracket generation")
	ErrMatchNotFound            = errors.New("bracket match not found")
	ErrMatchAlreadyResolved     = errors.New("bracket match is already resolved")
	ErrWinnerNotInMatch         = errors.New("winner is not a fighter in this match")
	ErrFighterNotInMatch        = errors.New("fighter is not a participant in this match")
	ErrDeadlineNotPassed        = errors.New("match deadline has not passed yet")
	ErrInvalidMatchTransition   = errors.New("invalid match status transition")
	ErrMatchNotReady            = errors.New("an earlier-round match feeding this one is still unresolved")
)

// DefaultDeadline is the offset from generation time stamped on each match when the
// policy leaves it unset.
const DefaultDeadline = 7 * 24 * time.Hour

// Store is the read/write surface the engine needs. Implementations are expected to be
// bound to a single transaction; the engine performs no locking of its own, so callers
// must keep at most one writer per match.
type Store interface {
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus, winnerID *int) error
	UpdateParticipantStatus(ctx context.Context, tournamentID, fighterID int, status models.ParticipantStatus) error

	CreateMatches(ctx context.Context, matches []*models.BracketMatch) error
	GetMatch(ctx context.Context, id int) (*models.BracketMatch, error)
	// FindMatch returns ErrMatchNotFound when no such match exists.
	FindMatch(ctx context.Context, tournamentID, round, matchNumber int) (*models.BracketMatch, error)
	ListMatches(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error)
	UpdateMatch(ctx context.Context, match *models.BracketMatch) error

	// GetResult returns nil, nil when the tournament has no result yet.
	GetResult(ctx context.Context, tournamentID int) (*models.TournamentResult, error)
	CreateResult(ctx context.Context, result *models.TournamentResult) error
}

type Policy struct {
	Deadline time.Duration
}

// Outcome describes every row an engine call touched, for the caller to publish.
type Outcome struct {
	Match     *models.BracketMatch `json:"match"`
	NextMatch *models.BracketMatch `json:"next_match,omitempty"`
	// Result is set when the call completed the tournament.
	Result *models.TournamentResult `json:"result,omitempty"`
}

type Engine struct {
	store  Store
	policy Policy
	now    func() time.Time
}

func NewEngine(store Store, policy Policy) *Engine {
	if policy.Deadline <= 0 {
		policy.Deadline = DefaultDeadline
	}
	return &Engine{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// GenerateBracket creates the full bracket for an open tournament from its checked-in
// participants, ordered by seed. Structural byes are advanced immediately and the
// tournament moves to In Progress. Nothing is written when validation fails.
func (e *Engine) GenerateBracket(ctx context.Context, tournamentID int, participants []*models.TournamentParticipant) ([]*models.BracketMatch, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	tournament, err := e.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: status is %q", ErrTournamentNotOpen, tournament.Status)
	}

	generator, err := GeneratorFor(tournament.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, tournament.Format)
	}

	matches, err := generator.GenerateBracket(ctx, GenerateBracketParams{
		Tournament:   tournament,
		Participants: participants,
		Deadline:     e.now().Add(e.policy.Deadline),
	})
	if err != nil {
		return nil, err
	}

	if err := e.store.CreateMatches(ctx, matches); err != nil {
		return nil, fmt.Errorf("create bracket matches: %w", err)
	}

	for _, p := range participants {
		if err := e.store.UpdateParticipantStatus(ctx, tournamentID, p.FighterID, models.ParticipantActive); err != nil {
			return nil, fmt.Errorf("activate fighter %d: %w", p.FighterID, err)
		}
	}

	for _, m := range matches {
		if m.Status == models.MatchBye && m.WinnerID != nil {
			if _, err := e.propagate(ctx, m, *m.WinnerID); err != nil {
				return nil, fmt.Errorf("advance bye in round %d match %d: %w", m.Round, m.MatchNumber, err)
			}
		}
	}

	if err := e.store.UpdateTournamentStatus(ctx, tournamentID, models.StatusInProgress, nil); err != nil {
		return nil, fmt.Errorf("start tournament %d: %w", tournamentID, err)
	}

	return e.store.ListMatches(ctx, tournamentID)
}

// AdvanceWinner records winnerID as the winner of a match and moves them into the next
// round, completing the tournament when the match was the final. A match with an empty
// slot can only be decided once the feeder for that slot is terminal.
func (e *Engine) AdvanceWinner(ctx context.Context, matchID, winnerID int) (*Outcome, error) {
	return e.AdvanceWinnerWithStatus(ctx, matchID, winnerID, models.MatchCompleted)
}

// AdvanceWinnerWithStatus is AdvanceWinner with a caller-chosen terminal status.
func (e *Engine) AdvanceWinnerWithStatus(ctx context.Context, matchID, winnerID int, status models.MatchStatus) (*Outcome, error) {
	if !status.Terminal() || status == models.MatchNoShow {
		return nil, fmt.Errorf("%w: cannot advance a winner with status %q", ErrInvalidMatchTransition, status)
	}
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, ErrMatchAlreadyResolved
	}
	if !m.HasFighter(winnerID) {
		return nil, ErrWinnerNotInMatch
	}
	ready, err := e.feedersResolved(ctx, m)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrMatchNotReady
	}
	return e.advance(ctx, m, winnerID, status)
}

// ResolveBye settles a match whose deadline has passed. A lone fighter, or the only one
// of two who checked in, wins by bye. Otherwise the match is a no-show and nobody
// advances. Already-resolved matches are returned unchanged.
func (e *Engine) ResolveBye(ctx context.Context, matchID int) (*Outcome, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return &Outcome{Match: m}, nil
	}
	if !e.now().After(m.DeadlineDate) {
		return nil, ErrDeadlineNotPassed
	}
	ready, err := e.feedersResolved(ctx, m)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrMatchNotReady
	}

	var winner *int
	switch {
	case m.Fighter1ID != nil && m.Fighter2ID == nil:
		winner = m.Fighter1ID
	case m.Fighter1ID == nil && m.Fighter2ID != nil:
		winner = m.Fighter2ID
	case m.Fighter1ID != nil && m.Fighter2ID != nil:
		in1, in2 := m.Fighter1CheckIn != nil, m.Fighter2CheckIn != nil
		if in1 && !in2 {
			winner = m.Fighter1ID
		} else if in2 && !in1 {
			winner = m.Fighter2ID
		}
	}

	if winner != nil {
		return e.advance(ctx, m, *winner, models.MatchBye)
	}

	m.Status = models.MatchNoShow
	if err := e.store.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("mark match %d no-show: %w", m.ID, err)
	}
	for _, f := range []*int{m.Fighter1ID, m.Fighter2ID} {
		if f == nil {
			continue
		}
		if err := e.store.UpdateParticipantStatus(ctx, m.TournamentID, *f, models.ParticipantEliminated); err != nil {
			return nil, fmt.Errorf("eliminate fighter %d: %w", *f, err)
		}
	}
	return &Outcome{Match: m}, nil
}

// CheckIn stamps the check-in time for whichever slot fighterID occupies.
func (e *Engine) CheckIn(ctx context.Context, matchID, fighterID int) (*models.BracketMatch, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, ErrMatchAlreadyResolved
	}

	now := e.now()
	switch {
	case m.Fighter1ID != nil && *m.Fighter1ID == fighterID:
		m.Fighter1CheckIn = &now
	case m.Fighter2ID != nil && *m.Fighter2ID == fighterID:
		m.Fighter2CheckIn = &now
	default:
		return nil, ErrFighterNotInMatch
	}

	if err := e.store.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("check in fighter %d for match %d: %w", fighterID, matchID, err)
	}
	return m, nil
}

// ScheduleMatch moves a ready Pending match to Scheduled.
func (e *Engine) ScheduleMatch(ctx context.Context, matchID int, at time.Time) (*models.BracketMatch, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MatchPending || m.Fighter1ID == nil || m.Fighter2ID == nil {
		return nil, fmt.Errorf("%w: cannot schedule match in status %q", ErrInvalidMatchTransition, m.Status)
	}
	m.Status = models.MatchScheduled
	m.ScheduledDate = &at
	if err := e.store.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("schedule match %d: %w", matchID, err)
	}
	return m, nil
}

// StartMatch moves a Scheduled match to In Progress.
func (e *Engine) StartMatch(ctx context.Context, matchID int) (*models.BracketMatch, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MatchScheduled {
		return nil, fmt.Errorf("%w: cannot start match in status %q", ErrInvalidMatchTransition, m.Status)
	}
	m.Status = models.MatchInProgress
	if err := e.store.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("start match %d: %w", matchID, err)
	}
	return m, nil
}

// feedersResolved reports whether every empty slot of m is final: either no earlier
// match feeds it or that match is already terminal.
func (e *Engine) feedersResolved(ctx context.Context, m *models.BracketMatch) (bool, error) {
	if m.Round <= 1 {
		return true, nil
	}
	slots := []struct {
		fighter *int
		feeder  int
	}{
		{m.Fighter1ID, m.MatchNumber*2 - 1},
		{m.Fighter2ID, m.MatchNumber * 2},
	}
	for _, slot := range slots {
		if slot.fighter != nil {
			continue
		}
		feeder, err := e.store.FindMatch(ctx, m.TournamentID, m.Round-1, slot.feeder)
		if errors.Is(err, ErrMatchNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("find feeder match for match %d: %w", m.ID, err)
		}
		if !feeder.Status.Terminal() {
			return false, nil
		}
	}
	return true, nil
}

func (e *Engine) advance(ctx context.Context, m *models.BracketMatch, winnerID int, status models.MatchStatus) (*Outcome, error) {
	w := winnerID
	m.WinnerID = &w
	m.Status = status
	if err := e.store.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("record winner for match %d: %w", m.ID, err)
	}

	if loser := m.Opponent(winnerID); loser != nil {
		if err := e.store.UpdateParticipantStatus(ctx, m.TournamentID, *loser, models.ParticipantEliminated); err != nil {
			return nil, fmt.Errorf("eliminate fighter %d: %w", *loser, err)
		}
	}

	return e.propagate(ctx, m, winnerID)
}

// propagate writes the winner of a resolved match into the next round, or completes the
// tournament when there is no next round.
func (e *Engine) propagate(ctx context.Context, m *models.BracketMatch, winnerID int) (*Outcome, error) {
	outcome := &Outcome{Match: m}

	nextRound, nextNumber, firstSlot := NextSlot(m.Round, m.MatchNumber)
	next, err := e.store.FindMatch(ctx, m.TournamentID, nextRound, nextNumber)
	if errors.Is(err, ErrMatchNotFound) {
		result, err := e.complete(ctx, m, winnerID)
		if err != nil {
			return nil, err
		}
		outcome.Result = result
		return outcome, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find next match for round %d match %d: %w", m.Round, m.MatchNumber, err)
	}

	if next.Status.Terminal() {
		return nil, fmt.Errorf("%w: next match %d is already %q", ErrMatchAlreadyResolved, next.ID, next.Status)
	}

	w := winnerID
	if firstSlot {
		next.Fighter1ID = &w
	} else {
		next.Fighter2ID = &w
	}
	if next.Fighter1ID != nil && next.Fighter2ID != nil {
		next.Status = models.MatchPending
	}
	if err := e.store.UpdateMatch(ctx, next); err != nil {
		return nil, fmt.Errorf("seat winner in match %d: %w", next.ID, err)
	}
	outcome.NextMatch = next
	return outcome, nil
}

func (e *Engine) complete(ctx context.Context, final *models.BracketMatch, championID int) (*models.TournamentResult, error) {
	result, err := e.store.GetResult(ctx, final.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("load result for tournament %d: %w", final.TournamentID, err)
	}
	if result == nil {
		result = &models.TournamentResult{
			TournamentID:   final.TournamentID,
			ChampionID:     championID,
			CompletionDate: e.now(),
		}
		if runnerUp := final.Opponent(championID); runnerUp != nil {
			id := *runnerUp
			result.RunnerUpID = &id
		}
		if err := e.store.CreateResult(ctx, result); err != nil {
			return nil, fmt.Errorf("record result for tournament %d: %w", final.TournamentID, err)
		}
	}

	champion := championID
	if err := e.store.UpdateTournamentStatus(ctx, final.TournamentID, models.StatusCompleted, &champion); err != nil {
		return nil, fmt.Errorf("complete tournament %d: %w", final.TournamentID, err)
	}
	return result, nil
}
