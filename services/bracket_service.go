package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/repositories"
	"github.com/Dosada05/fight-league/storage"
)

// sweepBatchSize bounds how many overdue matches a single sweep looks at.
const sweepBatchSize = 200

// Notifier pushes a change to everyone watching a tournament. brackets.Hub satisfies it.
type Notifier interface {
	Publish(tournamentID int, messageType string, payload interface{})
}

type BracketRound struct {
	Round   int                    `json:"round"`
	Matches []*models.BracketMatch `json:"matches"`
}

type BracketView struct {
	TournamentID int                      `json:"tournament_id"`
	Status       models.TournamentStatus  `json:"status"`
	Rounds       []BracketRound           `json:"rounds"`
	Result       *models.TournamentResult `json:"result,omitempty"`
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID int) (*BracketView, error)
	Bracket(ctx context.Context, tournamentID int) (*BracketView, error)
	AdvanceWinner(ctx context.Context, matchID, winnerID int) (*brackets.Outcome, error)
	ResolveBye(ctx context.Context, matchID int) (*brackets.Outcome, error)
	CheckIn(ctx context.Context, matchID, fighterID int) (*models.BracketMatch, error)
	Schedule(ctx context.Context, matchID int, at time.Time) (*models.BracketMatch, error)
	Start(ctx context.Context, matchID int) (*models.BracketMatch, error)
	// SweepExpired resolves every overdue match it can and reports how many it resolved.
	SweepExpired(ctx context.Context) (int, error)
}

type bracketService struct {
	tx              Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	notifier        Notifier
	archive         storage.FileUploader
	policy          brackets.Policy
	logger          *slog.Logger
	now             func() time.Time
}

// NewBracketService wires the engine to postgres. notifier and archive may be nil.
func NewBracketService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	notifier Notifier,
	archive storage.FileUploader,
	policy brackets.Policy,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		notifier:        notifier,
		archive:         archive,
		policy:          policy,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *bracketService) engine(exec repositories.SQLExecutor) *brackets.Engine {
	store := repositories.NewBracketStore(exec, s.tournamentRepo, s.participantRepo, s.matchRepo)
	return brackets.NewEngine(store, s.policy).WithClock(s.now)
}

func (s *bracketService) publish(tournamentID int, messageType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(tournamentID, messageType, payload)
}

func groupByRound(matches []*models.BracketMatch) []BracketRound {
	rounds := make([]BracketRound, 0)
	for _, m := range matches {
		if len(rounds) == 0 || rounds[len(rounds)-1].Round != m.Round {
			rounds = append(rounds, BracketRound{Round: m.Round})
		}
		last := &rounds[len(rounds)-1]
		last.Matches = append(last.Matches, m)
	}
	return rounds
}

func (s *bracketService) Generate(ctx context.Context, tournamentID int) (*BracketView, error) {
	var matches []*models.BracketMatch
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		checkedIn := models.ParticipantCheckedIn
		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID, &checkedIn)
		if err != nil {
			return fmt.Errorf("failed to list checked-in participants: %w", err)
		}
		matches, err = s.engine(exec).GenerateBracket(ctx, tournamentID, participants)
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}

	view := &BracketView{
		TournamentID: tournamentID,
		Status:       models.StatusInProgress,
		Rounds:       groupByRound(matches),
	}
	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(matches)),
		slog.Int("rounds", len(view.Rounds)))
	s.publish(tournamentID, brackets.MessageBracketGenerated, view)
	return view, nil
}

func (s *bracketService) Bracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket matches: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrBracketNotGenerated
	}

	view := &BracketView{
		TournamentID: tournamentID,
		Status:       t.Status,
		Rounds:       groupByRound(matches),
	}
	result, err := s.tournamentRepo.GetResult(ctx, nil, tournamentID)
	switch {
	case err == nil:
		view.Result = result
	case !errors.Is(err, repositories.ErrTournamentResultNotFound):
		return nil, fmt.Errorf("failed to load tournament result: %w", err)
	}
	return view, nil
}

func (s *bracketService) AdvanceWinner(ctx context.Context, matchID, winnerID int) (*brackets.Outcome, error) {
	var outcome *brackets.Outcome
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		outcome, err = s.engine(exec).AdvanceWinner(ctx, matchID, winnerID)
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("match winner recorded", slog.Int("match_id", matchID), slog.Int("winner_id", winnerID))
	s.afterOutcome(ctx, outcome)
	return outcome, nil
}

func (s *bracketService) ResolveBye(ctx context.Context, matchID int) (*brackets.Outcome, error) {
	var outcome *brackets.Outcome
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		outcome, err = s.engine(exec).ResolveBye(ctx, matchID)
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("match resolved after deadline", slog.Int("match_id", matchID), slog.String("status", string(outcome.Match.Status)))
	s.afterOutcome(ctx, outcome)
	return outcome, nil
}

func (s *bracketService) CheckIn(ctx context.Context, matchID, fighterID int) (*models.BracketMatch, error) {
	return s.matchTransition(ctx, func(e *brackets.Engine) (*models.BracketMatch, error) {
		return e.CheckIn(ctx, matchID, fighterID)
	})
}

func (s *bracketService) Schedule(ctx context.Context, matchID int, at time.Time) (*models.BracketMatch, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", ErrValidationFailed)
	}
	return s.matchTransition(ctx, func(e *brackets.Engine) (*models.BracketMatch, error) {
		return e.ScheduleMatch(ctx, matchID, at)
	})
}

func (s *bracketService) Start(ctx context.Context, matchID int) (*models.BracketMatch, error) {
	return s.matchTransition(ctx, func(e *brackets.Engine) (*models.BracketMatch, error) {
		return e.StartMatch(ctx, matchID)
	})
}

func (s *bracketService) matchTransition(ctx context.Context, fn func(e *brackets.Engine) (*models.BracketMatch, error)) (*models.BracketMatch, error) {
	var m *models.BracketMatch
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		m, err = fn(s.engine(exec))
		return handleRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}
	s.publish(m.TournamentID, brackets.MessageMatchUpdated, m)
	return m, nil
}

func (s *bracketService) SweepExpired(ctx context.Context) (int, error) {
	overdue, err := s.matchRepo.ListOverdue(ctx, nil, s.now(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue matches: %w", err)
	}

	resolved := 0
	for _, m := range overdue {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		_, err := s.ResolveBye(ctx, m.ID)
		switch {
		case err == nil:
			resolved++
		case errors.Is(err, brackets.ErrMatchNotReady),
			errors.Is(err, brackets.ErrDeadlineNotPassed):
			s.logger.Debug("overdue match skipped", slog.Int("match_id", m.ID), slog.String("reason", err.Error()))
		default:
			s.logger.Error("failed to resolve overdue match", slog.Int("match_id", m.ID), slog.Any("error", err))
		}
	}
	if len(overdue) > 0 {
		s.logger.Info("deadline sweep finished", slog.Int("overdue", len(overdue)), slog.Int("resolved", resolved))
	}
	return resolved, nil
}

func (s *bracketService) afterOutcome(ctx context.Context, outcome *brackets.Outcome) {
	tournamentID := outcome.Match.TournamentID
	s.publish(tournamentID, brackets.MessageMatchUpdated, outcome.Match)
	if outcome.NextMatch != nil {
		s.publish(tournamentID, brackets.MessageMatchUpdated, outcome.NextMatch)
	}
	if outcome.Result == nil {
		return
	}

	s.logger.Info("tournament completed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("champion_id", outcome.Result.ChampionID))
	s.publish(tournamentID, brackets.MessageTournamentComplete, outcome.Result)
	s.archiveBracket(ctx, tournamentID)
}

// ArchiveKey is the object key a completed tournament's bracket is stored under.
func ArchiveKey(tournamentID int) string {
	return fmt.Sprintf("brackets/tournament_%d.json", tournamentID)
}

// archiveBracket uploads the final bracket. Failures are logged, the tournament result is
// already committed.
func (s *bracketService) archiveBracket(ctx context.Context, tournamentID int) {
	if s.archive == nil {
		return
	}
	view, err := s.Bracket(ctx, tournamentID)
	if err != nil {
		s.logger.Error("failed to load bracket for archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	body, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("failed to encode bracket archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	res, err := s.archive.Upload(ctx, ArchiveKey(tournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to upload bracket archive", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.logger.Info("bracket archived", slog.Int("tournament_id", tournamentID), slog.String("location", res.Location))
}
