package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fight-league/matchmaking"
	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/repositories"
)

type MatchmakingService interface {
	Suggestions(ctx context.Context, fighterID int, criteria matchmaking.Criteria) ([]matchmaking.Suggestion, error)
	AutoAssign(ctx context.Context, fighterID int, kind matchmaking.Kind, criteria matchmaking.Criteria) (*matchmaking.Suggestion, error)
}

type matchmakingService struct {
	fighterRepo repositories.FighterRepository
	rankings    RankingService
	logger      *slog.Logger
}

func NewMatchmakingService(fighterRepo repositories.FighterRepository, rankings RankingService, logger *slog.Logger) MatchmakingService {
	return &matchmakingService{fighterRepo: fighterRepo, rankings: rankings, logger: logger}
}

// pool ranks the requester's weight class and returns the requester's own entry, the
// ranked pool and the requester's recent opponents.
func (s *matchmakingService) pool(ctx context.Context, fighterID int, window int) (models.RankingEntry, []models.RankingEntry, []string, error) {
	standing, err := s.fighterRepo.GetStanding(ctx, nil, fighterID)
	if err != nil {
		return models.RankingEntry{}, nil, nil, handleRepositoryError(err)
	}

	entries, err := s.rankings.Rankings(ctx, standing.WeightClass)
	if err != nil {
		return models.RankingEntry{}, nil, nil, err
	}
	var requester *models.RankingEntry
	for i := range entries {
		if entries[i].ID == fighterID {
			requester = &entries[i]
			break
		}
	}
	if requester == nil {
		return models.RankingEntry{}, nil, nil, fmt.Errorf("%w: fighter %d is not ranked", ErrFighterNotFound, fighterID)
	}

	var recent []string
	if window > 0 {
		records, err := s.fighterRepo.ListRecordsByFighter(ctx, nil, fighterID, window)
		if err != nil {
			return models.RankingEntry{}, nil, nil, fmt.Errorf("failed to load recent opponents: %w", err)
		}
		recent = matchmaking.RecentOpponents(records, window)
	}
	return *requester, entries, recent, nil
}

func (s *matchmakingService) Suggestions(ctx context.Context, fighterID int, criteria matchmaking.Criteria) ([]matchmaking.Suggestion, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	requester, entries, recent, err := s.pool(ctx, fighterID, criteria.RecentOpponentWindow)
	if err != nil {
		return nil, err
	}
	suggestions, err := matchmaking.Suggest(requester, entries, recent, criteria)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("matchmaking suggestions", slog.Int("fighter_id", fighterID), slog.Int("count", len(suggestions)))
	return suggestions, nil
}

func (s *matchmakingService) AutoAssign(ctx context.Context, fighterID int, kind matchmaking.Kind, criteria matchmaking.Criteria) (*matchmaking.Suggestion, error) {
	if _, err := criteria.ForKind(kind); err != nil {
		return nil, err
	}
	requester, entries, recent, err := s.pool(ctx, fighterID, criteria.RecentOpponentWindow)
	if err != nil {
		return nil, err
	}
	best, err := matchmaking.AutoAssign(kind, requester, entries, recent, criteria)
	if err != nil {
		return nil, err
	}
	s.logger.Info("auto-assigned partner",
		slog.Int("fighter_id", fighterID),
		slog.String("kind", string(kind)),
		slog.Int("partner_id", best.Fighter.ID),
		slog.Bool("fallback", best.Fallback))
	return best, nil
}
