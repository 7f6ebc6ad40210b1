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
	ErrBracketMatchNotFound = errors.New("bracket match not found")
	ErrBracketMatchConflict = errors.New("bracket match already exists at this position")
)

// MatchRepository stores bracket matches. Every Get/Find call locks the returned row
// FOR UPDATE, so callers must run them inside a transaction to hold the lock.
type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error)
	FindByPosition(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.BracketMatch, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketMatch, error)
	Update(ctx context.Context, exec SQLExecutor, m *models.BracketMatch) error
	// ListOverdue returns unresolved matches whose deadline is before now, oldest round first.
	ListOverdue(ctx context.Context, exec SQLExecutor, now time.Time, limit int) ([]*models.BracketMatch, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, match_number, fighter1_id, fighter2_id, winner_id,
	scheduled_date, deadline_date, fighter1_check_in, fighter2_check_in, status, created_at`

func scanMatch(row rowScanner) (*models.BracketMatch, error) {
	m := &models.BracketMatch{}
	var f1, f2, winner sql.NullInt64
	var scheduled, checkIn1, checkIn2 sql.NullTime
	if err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &f1, &f2, &winner,
		&scheduled, &m.DeadlineDate, &checkIn1, &checkIn2, &m.Status, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Fighter1ID = intFromNull(f1)
	m.Fighter2ID = intFromNull(f2)
	m.WinnerID = intFromNull(winner)
	m.ScheduledDate = timeFromNull(scheduled)
	m.Fighter1CheckIn = timeFromNull(checkIn1)
	m.Fighter2CheckIn = timeFromNull(checkIn2)
	return m, nil
}

func timeFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches (
			tournament_id, round, match_number, fighter1_id, fighter2_id, winner_id,
			scheduled_date, deadline_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.Round, m.MatchNumber,
			nullableInt(m.Fighter1ID), nullableInt(m.Fighter2ID), nullableInt(m.WinnerID),
			nullableTime(m.ScheduledDate), m.DeadlineDate, m.Status,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			if mapped, ok := constraintError(err, pqUniqueViolation, map[string]error{
				"bracket_matches_tournament_id_round_match_number_key": ErrBracketMatchConflict,
			}); ok {
				return mapped
			}
			return fmt.Errorf("failed to create match round %d number %d: %w", m.Round, m.MatchNumber, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error) {
	query := `SELECT` + matchColumns + ` FROM bracket_matches WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, exec, query, id)
}

func (r *postgresMatchRepository) FindByPosition(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.BracketMatch, error) {
	query := `
		SELECT` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1 AND round = $2 AND match_number = $3
		FOR UPDATE`
	return r.getOne(ctx, exec, query, tournamentID, round, matchNumber)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.BracketMatch, error) {
	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketMatchNotFound
		}
		return nil, fmt.Errorf("failed to get bracket match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketMatch, error) {
	query := `
		SELECT` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY round ASC, match_number ASC`
	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresMatchRepository) ListOverdue(ctx context.Context, exec SQLExecutor, now time.Time, limit int) ([]*models.BracketMatch, error) {
	query := `
		SELECT` + matchColumns + `
		FROM bracket_matches
		WHERE deadline_date < $1 AND status IN ('Pending', 'Scheduled')
		ORDER BY tournament_id ASC, round ASC, match_number ASC
		LIMIT $2`
	return r.list(ctx, exec, query, now, limit)
}

func (r *postgresMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.BracketMatch, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.BracketMatch, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bracket match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bracket matches: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.BracketMatch) error {
	query := `
		UPDATE bracket_matches SET
			fighter1_id = $1, fighter2_id = $2, winner_id = $3, scheduled_date = $4,
			deadline_date = $5, fighter1_check_in = $6, fighter2_check_in = $7, status = $8
		WHERE id = $9`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		nullableInt(m.Fighter1ID), nullableInt(m.Fighter2ID), nullableInt(m.WinnerID), nullableTime(m.ScheduledDate),
		m.DeadlineDate, nullableTime(m.Fighter1CheckIn), nullableTime(m.Fighter2CheckIn), m.Status, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bracket match %d: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}
