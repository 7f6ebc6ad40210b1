package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fight-league/models"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("fighter is already registered for this tournament")
	ErrParticipantFighterInvalid    = errors.New("participant fighter is invalid")
	ErrParticipantTournamentInvalid = errors.New("participant tournament is invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.TournamentParticipant) error
	FindByFighterAndTournament(ctx context.Context, exec SQLExecutor, fighterID, tournamentID int) (*models.TournamentParticipant, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, fighterID int, status models.ParticipantStatus) error
	// ListByTournament returns participants ordered by seed, optionally limited to one status.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.TournamentParticipant, error)
	// CountByTournament counts every registration, withdrawn ones included.
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// CountActive counts registrations that still hold a place.
	CountActive(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.TournamentParticipant) error {
	query := `
		INSERT INTO tournament_participants (tournament_id, fighter_id, seed, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.TournamentID, p.FighterID, p.Seed, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if mapped, ok := constraintError(err, pqUniqueViolation, map[string]error{
			"tournament_participants_tournament_id_fighter_id_key": ErrParticipantConflict,
		}); ok {
			return mapped
		}
		if mapped, ok := constraintError(err, pqForeignKeyViolation, map[string]error{
			"tournament_participants_fighter_id_fkey":    ErrParticipantFighterInvalid,
			"tournament_participants_tournament_id_fkey": ErrParticipantTournamentInvalid,
		}); ok {
			return mapped
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func scanParticipant(row rowScanner, p *models.TournamentParticipant) error {
	return row.Scan(&p.ID, &p.TournamentID, &p.FighterID, &p.Seed, &p.Status, &p.CreatedAt)
}

func (r *postgresParticipantRepository) FindByFighterAndTournament(ctx context.Context, exec SQLExecutor, fighterID, tournamentID int) (*models.TournamentParticipant, error) {
	query := `
		SELECT id, tournament_id, fighter_id, seed, status, created_at
		FROM tournament_participants
		WHERE fighter_id = $1 AND tournament_id = $2`

	p := &models.TournamentParticipant{}
	if err := scanParticipant(r.getExecutor(exec).QueryRowContext(ctx, query, fighterID, tournamentID), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, tournamentID, fighterID int, status models.ParticipantStatus) error {
	query := `UPDATE tournament_participants SET status = $1 WHERE tournament_id = $2 AND fighter_id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, tournamentID, fighterID)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.TournamentParticipant, error) {
	query := `
		SELECT id, tournament_id, fighter_id, seed, status, created_at
		FROM tournament_participants
		WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += " AND status = $2"
		args = append(args, *statusFilter)
	}
	query += " ORDER BY seed ASC, id ASC"

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.TournamentParticipant, 0)
	for rows.Next() {
		p := &models.TournamentParticipant{}
		if err := scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	return r.count(ctx, exec, `SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = $1`, tournamentID)
}

func (r *postgresParticipantRepository) CountActive(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	return r.count(ctx, exec, `SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = $1 AND status <> 'Withdrawn'`, tournamentID)
}

func (r *postgresParticipantRepository) count(ctx context.Context, exec SQLExecutor, query string, tournamentID int) (int, error) {
	var n int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	return n, nil
}
