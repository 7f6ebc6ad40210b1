package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/repositories"
)

type ParticipantService interface {
	Join(ctx context.Context, tournamentID, fighterID int) (*models.TournamentParticipant, error)
	CheckIn(ctx context.Context, tournamentID, fighterID int) (*models.TournamentParticipant, error)
	Withdraw(ctx context.Context, tournamentID, fighterID int) error
	List(ctx context.Context, tournamentID int) ([]*models.TournamentParticipant, error)
}

type participantService struct {
	tx              Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	fighterRepo     repositories.FighterRepository
	logger          *slog.Logger
}

func NewParticipantService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	fighterRepo repositories.FighterRepository,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		fighterRepo:     fighterRepo,
		logger:          logger,
	}
}

func checkEligibility(t *models.Tournament, s *models.FighterStanding) error {
	if t.WeightClass != "" && t.WeightClass != s.WeightClass {
		return fmt.Errorf("%w: weight class %s required, fighter is %s", ErrNotEligible, t.WeightClass, s.WeightClass)
	}
	if t.MinPoints != nil && s.Points < *t.MinPoints {
		return fmt.Errorf("%w: at least %d points required", ErrNotEligible, *t.MinPoints)
	}
	if t.MaxPoints != nil && s.Points > *t.MaxPoints {
		return fmt.Errorf("%w: at most %d points allowed", ErrNotEligible, *t.MaxPoints)
	}
	return nil
}

// Join registers the fighter with seed = number of registrations so far + 1.
func (s *participantService) Join(ctx context.Context, tournamentID, fighterID int) (*models.TournamentParticipant, error) {
	var p *models.TournamentParticipant
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.Status != models.StatusOpen {
			return ErrRegistrationNotOpen
		}

		standing, err := s.fighterRepo.GetStanding(ctx, exec, fighterID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if err := checkEligibility(t, standing); err != nil {
			return err
		}

		if t.MaxParticipants > 0 {
			active, err := s.participantRepo.CountActive(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			if active >= t.MaxParticipants {
				return ErrTournamentFull
			}
		}

		registered, err := s.participantRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		p = &models.TournamentParticipant{
			TournamentID: tournamentID,
			FighterID:    fighterID,
			Seed:         registered + 1,
			Status:       models.ParticipantRegistered,
		}
		return handleRepositoryError(s.participantRepo.Create(ctx, exec, p))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("fighter joined tournament", slog.Int("tournament_id", tournamentID), slog.Int("fighter_id", fighterID), slog.Int("seed", p.Seed))
	return p, nil
}

func (s *participantService) CheckIn(ctx context.Context, tournamentID, fighterID int) (*models.TournamentParticipant, error) {
	var p *models.TournamentParticipant
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.Status != models.StatusOpen {
			return ErrRegistrationNotOpen
		}
		p, err = s.participantRepo.FindByFighterAndTournament(ctx, exec, fighterID, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if p.Status == models.ParticipantCheckedIn {
			return nil
		}
		if p.Status != models.ParticipantRegistered {
			return fmt.Errorf("%w: status is %q", ErrCheckInNotAllowed, p.Status)
		}
		p.Status = models.ParticipantCheckedIn
		return handleRepositoryError(s.participantRepo.UpdateStatus(ctx, exec, tournamentID, fighterID, p.Status))
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *participantService) Withdraw(ctx context.Context, tournamentID, fighterID int) error {
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.Status != models.StatusOpen {
			return ErrWithdrawNotAllowed
		}
		p, err := s.participantRepo.FindByFighterAndTournament(ctx, exec, fighterID, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if p.Status == models.ParticipantWithdrawn {
			return nil
		}
		if err := s.participantRepo.UpdateStatus(ctx, exec, tournamentID, fighterID, models.ParticipantWithdrawn); err != nil {
			return handleRepositoryError(err)
		}
		s.logger.Info("fighter withdrew", slog.Int("tournament_id", tournamentID), slog.Int("fighter_id", fighterID))
		return nil
	})
}

func (s *participantService) List(ctx context.Context, tournamentID int) ([]*models.TournamentParticipant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	return participants, nil
}
