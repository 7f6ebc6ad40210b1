package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/models"
)

// BracketStore adapts the postgres repositories to brackets.Store for the lifetime of one
// transaction. Tournament and match reads take row locks, which is what keeps concurrent
// advancement of the same match or of two sibling matches serialized.
type BracketStore struct {
	exec         SQLExecutor
	tournaments  TournamentRepository
	participants ParticipantRepository
	matches      MatchRepository
}

var _ brackets.Store = (*BracketStore)(nil)

func NewBracketStore(exec SQLExecutor, tournaments TournamentRepository, participants ParticipantRepository, matches MatchRepository) *BracketStore {
	return &BracketStore{
		exec:         exec,
		tournaments:  tournaments,
		participants: participants,
		matches:      matches,
	}
}

func (s *BracketStore) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournaments.GetByIDForUpdate(ctx, s.exec, id)
}

func (s *BracketStore) UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus, winnerID *int) error {
	return s.tournaments.UpdateStatus(ctx, s.exec, id, status, winnerID)
}

func (s *BracketStore) UpdateParticipantStatus(ctx context.Context, tournamentID, fighterID int, status models.ParticipantStatus) error {
	return s.participants.UpdateStatus(ctx, s.exec, tournamentID, fighterID, status)
}

func (s *BracketStore) CreateMatches(ctx context.Context, matches []*models.BracketMatch) error {
	return s.matches.CreateBatch(ctx, s.exec, matches)
}

func (s *BracketStore) GetMatch(ctx context.Context, id int) (*models.BracketMatch, error) {
	m, err := s.matches.GetByID(ctx, s.exec, id)
	return m, translateMatchError(err)
}

func (s *BracketStore) FindMatch(ctx context.Context, tournamentID, round, matchNumber int) (*models.BracketMatch, error) {
	m, err := s.matches.FindByPosition(ctx, s.exec, tournamentID, round, matchNumber)
	return m, translateMatchError(err)
}

func (s *BracketStore) ListMatches(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error) {
	return s.matches.ListByTournament(ctx, s.exec, tournamentID)
}

func (s *BracketStore) UpdateMatch(ctx context.Context, match *models.BracketMatch) error {
	return translateMatchError(s.matches.Update(ctx, s.exec, match))
}

func (s *BracketStore) GetResult(ctx context.Context, tournamentID int) (*models.TournamentResult, error) {
	res, err := s.tournaments.GetResult(ctx, s.exec, tournamentID)
	if errors.Is(err, ErrTournamentResultNotFound) {
		return nil, nil
	}
	return res, err
}

func (s *BracketStore) CreateResult(ctx context.Context, result *models.TournamentResult) error {
	return s.tournaments.CreateResult(ctx, s.exec, result)
}

func translateMatchError(err error) error {
	if errors.Is(err, ErrBracketMatchNotFound) {
		return brackets.ErrMatchNotFound
	}
	return err
}
