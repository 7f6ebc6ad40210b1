package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fight-league/models"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentResultNotFound = errors.New("tournament result not found")
	ErrTournamentResultConflict = errors.New("tournament result already recorded")
)

type TournamentRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, winnerID *int) error

	GetResult(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.TournamentResult, error)
	CreateResult(ctx context.Context, exec SQLExecutor, result *models.TournamentResult) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, id, "")
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, id, " FOR UPDATE")
}

func (r *postgresTournamentRepository) get(ctx context.Context, exec SQLExecutor, id int, lock string) (*models.Tournament, error) {
	query := `
		SELECT
			id, name, format, weight_class, min_points, max_points, max_participants,
			start_date, end_date, status, winner_id, created_at
		FROM tournaments
		WHERE id = $1` + lock

	t := &models.Tournament{}
	var minPoints, maxPoints, winnerID sql.NullInt64
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &t.WeightClass, &minPoints, &maxPoints, &t.MaxParticipants,
		&t.StartDate, &t.EndDate, &t.Status, &winnerID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	t.MinPoints = intFromNull(minPoints)
	t.MaxPoints = intFromNull(maxPoints)
	t.WinnerID = intFromNull(winnerID)
	return t, nil
}

// UpdateStatus sets the status and, when winnerID is non-nil, the winner.
func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, winnerID *int) error {
	query := `UPDATE tournaments SET status = $1, winner_id = COALESCE($2, winner_id) WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, nullableInt(winnerID), id)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) GetResult(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.TournamentResult, error) {
	query := `
		SELECT id, tournament_id, champion_id, runner_up_id, third_place_id, completion_date
		FROM tournament_results
		WHERE tournament_id = $1`

	res := &models.TournamentResult{}
	var runnerUp, thirdPlace sql.NullInt64
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID).Scan(
		&res.ID, &res.TournamentID, &res.ChampionID, &runnerUp, &thirdPlace, &res.CompletionDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentResultNotFound
		}
		return nil, fmt.Errorf("failed to get result of tournament %d: %w", tournamentID, err)
	}
	res.RunnerUpID = intFromNull(runnerUp)
	res.ThirdPlaceID = intFromNull(thirdPlace)
	return res, nil
}

func (r *postgresTournamentRepository) CreateResult(ctx context.Context, exec SQLExecutor, res *models.TournamentResult) error {
	query := `
		INSERT INTO tournament_results (tournament_id, champion_id, runner_up_id, third_place_id, completion_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		res.TournamentID, res.ChampionID, nullableInt(res.RunnerUpID), nullableInt(res.ThirdPlaceID), res.CompletionDate,
	).Scan(&res.ID)
	if err != nil {
		if mapped, ok := constraintError(err, pqUniqueViolation, map[string]error{
			"tournament_results_tournament_id_key": ErrTournamentResultConflict,
		}); ok {
			return mapped
		}
		return fmt.Errorf("failed to record result of tournament %d: %w", res.TournamentID, err)
	}
	return nil
}
