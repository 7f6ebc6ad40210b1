package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/fight-league/matchmaking"
	"github.com/Dosada05/fight-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingServiceRankings(t *testing.T) {
	heavy := standing(4, "Dan", 500)
	heavy.WeightClass = "Heavyweight"
	fighters := newFakeFighterRepo(standing(1, "Ana", 20), standing(2, "Bea", 60), standing(3, "Cid", 40), heavy)
	svc := NewRankingService(fighters, discardLogger())

	entries, err := svc.Rankings(context.Background(), "Welterweight")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})

	all, err := svc.Rankings(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 4, all[0].ID)
}

func TestMatchmakingServiceSuggestions(t *testing.T) {
	ctx := context.Background()
	fighters := newFakeFighterRepo(
		standing(1, "Ana", 50),
		standing(2, "Bea", 55),
		standing(3, "Cid", 45),
		standing(4, "Dan", 300),
	)
	require.NoError(t, fighters.CreateRecord(ctx, nil, &models.FightRecord{
		FighterID: 1, OpponentName: "Bea", Result: models.ResultWin, Method: models.MethodDecision,
		Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}))

	rankingSvc := NewRankingService(fighters, discardLogger())
	svc := NewMatchmakingService(fighters, rankingSvc, discardLogger())

	t.Run("recent opponents are skipped", func(t *testing.T) {
		got, err := svc.Suggestions(ctx, 1, matchmaking.DefaultCriteria())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Fighter.ID)
	})

	t.Run("recent opponents allowed", func(t *testing.T) {
		c := matchmaking.DefaultCriteria()
		c.AvoidRecentOpponents = false
		got, err := svc.Suggestions(ctx, 1, c)
		require.NoError(t, err)
		ids := make([]int, len(got))
		for i, s := range got {
			ids[i] = s.Fighter.ID
		}
		assert.ElementsMatch(t, []int{2, 3}, ids)
	})

	t.Run("unknown fighter", func(t *testing.T) {
		_, err := svc.Suggestions(ctx, 99, matchmaking.DefaultCriteria())
		assert.ErrorIs(t, err, ErrFighterNotFound)
	})

	t.Run("invalid criteria", func(t *testing.T) {
		c := matchmaking.DefaultCriteria()
		c.RankWindow = -1
		_, err := svc.Suggestions(ctx, 1, c)
		assert.ErrorIs(t, err, matchmaking.ErrInvalidCriteria)
	})

	t.Run("auto assign", func(t *testing.T) {
		best, err := svc.AutoAssign(ctx, 1, matchmaking.KindOpponent, matchmaking.DefaultCriteria())
		require.NoError(t, err)
		assert.Equal(t, 3, best.Fighter.ID)
		assert.False(t, best.Fallback)

		_, err = svc.AutoAssign(ctx, 4, matchmaking.KindOpponent, matchmaking.DefaultCriteria())
		assert.ErrorIs(t, err, matchmaking.ErrNoCompatibleOpponent)

		_, err = svc.AutoAssign(ctx, 1, "rematch", matchmaking.DefaultCriteria())
		assert.ErrorIs(t, err, matchmaking.ErrInvalidCriteria)
	})
}
