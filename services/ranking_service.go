package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/rankings"
	"github.com/Dosada05/fight-league/repositories"
	"golang.org/x/sync/errgroup"
)

type RankingService interface {
	// Rankings orders every eligible fighter, optionally within one weight class.
	Rankings(ctx context.Context, weightClass string) ([]models.RankingEntry, error)
}

type rankingService struct {
	fighterRepo repositories.FighterRepository
	logger      *slog.Logger
}

func NewRankingService(fighterRepo repositories.FighterRepository, logger *slog.Logger) RankingService {
	return &rankingService{fighterRepo: fighterRepo, logger: logger}
}

func (s *rankingService) Rankings(ctx context.Context, weightClass string) ([]models.RankingEntry, error) {
	filter := repositories.ListStandingsFilter{WeightClass: weightClass}

	var (
		standings []models.FighterStanding
		records   []models.FightRecord
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standings, err = s.fighterRepo.ListStandings(gCtx, nil, filter)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.fighterRepo.ListRecords(gCtx, nil, filter)
		if err != nil {
			return fmt.Errorf("failed to load fight records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("ranking load failed", slog.String("weight_class", weightClass), slog.Any("error", err))
		return nil, err
	}

	entries := rankings.Rank(standings, records)
	s.logger.Debug("rankings computed", slog.String("weight_class", weightClass), slog.Int("fighters", len(entries)))
	return entries, nil
}
