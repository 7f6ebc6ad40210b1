package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/repositories"
)

type TournamentService interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Cancel(ctx context.Context, id int) (*models.Tournament, error)
}

type tournamentService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	notifier       Notifier
	logger         *slog.Logger
}

func NewTournamentService(tx Transactor, tournamentRepo repositories.TournamentRepository, notifier Notifier, logger *slog.Logger) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

// Cancel stops an open or running tournament. Matches and registrations are left as they
// are for the record.
func (s *tournamentService) Cancel(ctx context.Context, id int) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		if !isValidStatusTransition(t.Status, models.StatusCancelled) {
			return fmt.Errorf("%w: from '%s' to '%s'", ErrTournamentInvalidStatusTransition, t.Status, models.StatusCancelled)
		}
		if t.Status == models.StatusCancelled {
			return nil
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, id, models.StatusCancelled, nil); err != nil {
			return handleRepositoryError(err)
		}
		t.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament cancelled", slog.Int("tournament_id", id))
	if s.notifier != nil {
		s.notifier.Publish(id, brackets.MessageTournamentCanceled, t)
	}
	return t, nil
}
