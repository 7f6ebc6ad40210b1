package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/repositories"
)

// Transactor runs fn inside a single database transaction, committing when fn returns nil
// and rolling back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTransactor struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLTransactor(db *sql.DB, logger *slog.Logger) Transactor {
	return &sqlTransactor{db: db, logger: logger}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

// handleRepositoryError translates repository sentinels into service errors so handlers
// only need to know about the services package.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrFighterNotFound):
		return fmt.Errorf("%w: %v", ErrFighterNotFound, err)
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %v", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return fmt.Errorf("%w: %v", ErrParticipantNotFound, err)
	case errors.Is(err, repositories.ErrParticipantConflict):
		return fmt.Errorf("%w: %v", ErrRegistrationConflict, err)
	case errors.Is(err, repositories.ErrParticipantFighterInvalid),
		errors.Is(err, repositories.ErrFightRecordFighterInvalid):
		return fmt.Errorf("%w: %v", ErrFighterNotFound, err)
	case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
		return fmt.Errorf("%w: %v", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrBracketMatchNotFound):
		return fmt.Errorf("%w: %v", brackets.ErrMatchNotFound, err)
	default:
		return err
	}
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusOpen:       {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:  {},
		models.StatusCancelled:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}
