package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/fight-league/models"
)

var (
	ErrFighterNotFound           = errors.New("fighter not found")
	ErrFighterConflict           = errors.New("fighter standing already exists")
	ErrFightRecordFighterInvalid = errors.New("fight record references an unknown fighter")
)

type ListStandingsFilter struct {
	WeightClass string
}

// FighterRepository reads and writes fighter standings and their fight history. Listing
// queries only return fighters whose account is not an administrator.
type FighterRepository interface {
	CreateStanding(ctx context.Context, exec SQLExecutor, s *models.FighterStanding) error
	GetStanding(ctx context.Context, exec SQLExecutor, id int) (*models.FighterStanding, error)
	// GetStandingForUpdate locks the row until the surrounding transaction ends.
	GetStandingForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.FighterStanding, error)
	ListStandings(ctx context.Context, exec SQLExecutor, filter ListStandingsFilter) ([]models.FighterStanding, error)
	UpdateStanding(ctx context.Context, exec SQLExecutor, s *models.FighterStanding) error

	CreateRecord(ctx context.Context, exec SQLExecutor, r *models.FightRecord) error
	// ListRecordsByFighter returns the fighter's records newest first. limit <= 0 means all.
	ListRecordsByFighter(ctx context.Context, exec SQLExecutor, fighterID int, limit int) ([]models.FightRecord, error)
	ListRecords(ctx context.Context, exec SQLExecutor, filter ListStandingsFilter) ([]models.FightRecord, error)
}

type postgresFighterRepository struct {
	db *sql.DB
}

func NewPostgresFighterRepository(db *sql.DB) FighterRepository {
	return &postgresFighterRepository{db: db}
}

func (r *postgresFighterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `
	f.id, f.name, f.weight_class, f.tier, f.demoted, f.points, f.wins, f.losses, f.draws,
	f.knockouts, f.win_percentage, f.ko_percentage, COALESCE(f.timezone, ''), f.updated_at`

func scanStanding(row rowScanner, s *models.FighterStanding) error {
	return row.Scan(
		&s.ID, &s.Name, &s.WeightClass, &s.Tier, &s.Demoted, &s.Points, &s.Wins, &s.Losses, &s.Draws,
		&s.Knockouts, &s.WinPercentage, &s.KOPercentage, &s.Timezone, &s.UpdatedAt,
	)
}

func (r *postgresFighterRepository) CreateStanding(ctx context.Context, exec SQLExecutor, s *models.FighterStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fighters (
			id, name, weight_class, tier, demoted, points, wins, losses, draws,
			knockouts, win_percentage, ko_percentage, timezone, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14)`

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	_, err := executor.ExecContext(ctx, query,
		s.ID, s.Name, s.WeightClass, s.Tier, s.Demoted, s.Points, s.Wins, s.Losses, s.Draws,
		s.Knockouts, s.WinPercentage, s.KOPercentage, s.Timezone, s.UpdatedAt,
	)
	if err != nil {
		if mapped, ok := constraintError(err, pqUniqueViolation, map[string]error{"fighters_pkey": ErrFighterConflict}); ok {
			return mapped
		}
		return fmt.Errorf("failed to create fighter standing: %w", err)
	}
	return nil
}

func (r *postgresFighterRepository) GetStanding(ctx context.Context, exec SQLExecutor, id int) (*models.FighterStanding, error) {
	return r.getStanding(ctx, exec, id, "")
}

func (r *postgresFighterRepository) GetStandingForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.FighterStanding, error) {
	return r.getStanding(ctx, exec, id, " FOR UPDATE")
}

func (r *postgresFighterRepository) getStanding(ctx context.Context, exec SQLExecutor, id int, lock string) (*models.FighterStanding, error) {
	query := `SELECT` + standingColumns + ` FROM fighters f WHERE f.id = $1` + lock

	s := &models.FighterStanding{}
	if err := scanStanding(r.getExecutor(exec).QueryRowContext(ctx, query, id), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFighterNotFound
		}
		return nil, fmt.Errorf("failed to get fighter standing %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresFighterRepository) ListStandings(ctx context.Context, exec SQLExecutor, filter ListStandingsFilter) ([]models.FighterStanding, error) {
	query := `
		SELECT` + standingColumns + `
		FROM fighters f
		JOIN users u ON u.id = f.id
		WHERE u.role <> 'admin'`
	args := []interface{}{}
	if filter.WeightClass != "" {
		query += " AND f.weight_class = $1"
		args = append(args, filter.WeightClass)
	}
	query += " ORDER BY f.id"

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fighter standings: %w", err)
	}
	defer rows.Close()

	standings := make([]models.FighterStanding, 0)
	for rows.Next() {
		var s models.FighterStanding
		if err := scanStanding(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan fighter standing: %w", err)
		}
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fighter standings: %w", err)
	}
	return standings, nil
}

func (r *postgresFighterRepository) UpdateStanding(ctx context.Context, exec SQLExecutor, s *models.FighterStanding) error {
	query := `
		UPDATE fighters SET
			tier = $1, demoted = $2, points = $3, wins = $4, losses = $5, draws = $6,
			knockouts = $7, win_percentage = $8, ko_percentage = $9, updated_at = $10
		WHERE id = $11`

	s.UpdatedAt = time.Now()
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		s.Tier, s.Demoted, s.Points, s.Wins, s.Losses, s.Draws,
		s.Knockouts, s.WinPercentage, s.KOPercentage, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fighter standing %d: %w", s.ID, err)
	}
	return checkAffectedRows(result, ErrFighterNotFound)
}

func (r *postgresFighterRepository) CreateRecord(ctx context.Context, exec SQLExecutor, rec *models.FightRecord) error {
	query := `
		INSERT INTO fight_records (fighter_id, opponent_name, result, method, points_earned, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		rec.FighterID, rec.OpponentName, rec.Result, rec.Method, rec.PointsEarned, rec.Date,
	).Scan(&rec.ID)
	if err != nil {
		if mapped, ok := constraintError(err, pqForeignKeyViolation, map[string]error{
			"fight_records_fighter_id_fkey": ErrFightRecordFighterInvalid,
		}); ok {
			return mapped
		}
		return fmt.Errorf("failed to create fight record: %w", err)
	}
	return nil
}

const recordColumns = `fr.id, fr.fighter_id, fr.opponent_name, fr.result, fr.method, fr.points_earned, fr.date`

func (r *postgresFighterRepository) ListRecordsByFighter(ctx context.Context, exec SQLExecutor, fighterID int, limit int) ([]models.FightRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM fight_records fr WHERE fr.fighter_id = $1 ORDER BY fr.date DESC, fr.id DESC`
	args := []interface{}{fighterID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	return r.queryRecords(ctx, exec, query, args...)
}

func (r *postgresFighterRepository) ListRecords(ctx context.Context, exec SQLExecutor, filter ListStandingsFilter) ([]models.FightRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM fight_records fr
		JOIN fighters f ON f.id = fr.fighter_id
		JOIN users u ON u.id = f.id
		WHERE u.role <> 'admin'`
	args := []interface{}{}
	if filter.WeightClass != "" {
		query += " AND f.weight_class = $1"
		args = append(args, filter.WeightClass)
	}
	query += " ORDER BY fr.date DESC, fr.id DESC"
	return r.queryRecords(ctx, exec, query, args...)
}

func (r *postgresFighterRepository) queryRecords(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.FightRecord, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fight records: %w", err)
	}
	defer rows.Close()

	records := make([]models.FightRecord, 0)
	for rows.Next() {
		var rec models.FightRecord
		if err := rows.Scan(&rec.ID, &rec.FighterID, &rec.OpponentName, &rec.Result, &rec.Method, &rec.PointsEarned, &rec.Date); err != nil {
			return nil, fmt.Errorf("failed to scan fight record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fight records: %w", err)
	}
	return records, nil
}
