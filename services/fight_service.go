package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/rankings"
	"github.com/Dosada05/fight-league/repositories"
	"github.com/Dosada05/fight-league/tiers"
)

// BoutInput describes a finished bout. Result and Method are from fighter 1's side.
type BoutInput struct {
	Fighter1ID     int                `json:"fighter1_id"`
	Fighter2ID     int                `json:"fighter2_id"`
	Result         models.FightResult `json:"result"`
	Method         models.FightMethod `json:"method"`
	Fighter1Points int                `json:"fighter1_points"`
	Fighter2Points int                `json:"fighter2_points"`
	Date           time.Time          `json:"date"`
}

type BoutOutcome struct {
	Standings [2]models.FighterStanding `json:"standings"`
	Records   [2]models.FightRecord     `json:"records"`
}

type FightService interface {
	// RecordBout writes the two mirrored fight records and both updated standings atomically.
	RecordBout(ctx context.Context, in BoutInput) (*BoutOutcome, error)
}

type fightService struct {
	tx          Transactor
	fighterRepo repositories.FighterRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewFightService(tx Transactor, fighterRepo repositories.FighterRepository, logger *slog.Logger) FightService {
	return &fightService{tx: tx, fighterRepo: fighterRepo, logger: logger, now: time.Now}
}

func validateBout(in BoutInput) error {
	switch {
	case in.Fighter1ID <= 0 || in.Fighter2ID <= 0:
		return fmt.Errorf("%w: both fighter ids are required", ErrInvalidBout)
	case in.Fighter1ID == in.Fighter2ID:
		return fmt.Errorf("%w: a fighter cannot fight themselves", ErrInvalidBout)
	case !in.Result.Valid():
		return fmt.Errorf("%w: unknown result %q", ErrInvalidBout, in.Result)
	case in.Method == "":
		return fmt.Errorf("%w: method is required", ErrInvalidBout)
	case in.Result == models.ResultDraw && in.Method.IsKnockout():
		return fmt.Errorf("%w: a draw cannot end by %s", ErrInvalidBout, in.Method)
	}
	return nil
}

func (s *fightService) RecordBout(ctx context.Context, in BoutInput) (*BoutOutcome, error) {
	if err := validateBout(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	sides := [2]struct {
		id     int
		result models.FightResult
		points int
	}{
		{in.Fighter1ID, in.Result, in.Fighter1Points},
		{in.Fighter2ID, in.Result.Mirror(), in.Fighter2Points},
	}

	out := &BoutOutcome{}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Lock in id order so two bouts sharing fighters cannot deadlock.
		first, second := 0, 1
		if sides[1].id < sides[0].id {
			first, second = 1, 0
		}
		var standings [2]*models.FighterStanding
		for _, i := range []int{first, second} {
			st, err := s.fighterRepo.GetStandingForUpdate(ctx, exec, sides[i].id)
			if err != nil {
				return handleRepositoryError(err)
			}
			standings[i] = st
		}

		for i, side := range sides {
			opponent := standings[1-i]
			history, err := s.fighterRepo.ListRecordsByFighter(ctx, exec, side.id, 0)
			if err != nil {
				return fmt.Errorf("failed to load history of fighter %d: %w", side.id, err)
			}

			rec := models.FightRecord{
				FighterID:    side.id,
				OpponentName: opponent.Name,
				Result:       side.result,
				Method:       in.Method,
				PointsEarned: side.points,
				Date:         in.Date,
			}
			if err := s.fighterRepo.CreateRecord(ctx, exec, &rec); err != nil {
				return handleRepositoryError(err)
			}

			results := make([]models.FightResult, 0, len(history)+1)
			results = append(results, side.result)
			for _, h := range history {
				results = append(results, h.Result)
			}
			_, losses, wins := rankings.Streak(results)

			st := standings[i]
			before := st.Tier
			tiers.ApplyFight(st, side.result, in.Method, side.points, losses, wins)
			if err := s.fighterRepo.UpdateStanding(ctx, exec, st); err != nil {
				return handleRepositoryError(err)
			}
			if st.Tier != before {
				s.logger.Info("fighter tier changed",
					slog.Int("fighter_id", st.ID),
					slog.String("from", string(before)),
					slog.String("to", string(st.Tier)),
					slog.Bool("demoted", st.Demoted))
			}

			out.Records[i] = rec
			out.Standings[i] = *st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bout recorded",
		slog.Int("fighter1_id", in.Fighter1ID),
		slog.Int("fighter2_id", in.Fighter2ID),
		slog.String("result", string(in.Result)),
		slog.String("method", string(in.Method)))
	return out, nil
}
