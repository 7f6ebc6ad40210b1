package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/fight-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFightServiceRecordBout(t *testing.T) {
	ctx := context.Background()
	fighters := newFakeFighterRepo(standing(1, "Ana", 25), standing(2, "Bea", 40))
	svc := NewFightService(&fakeTx{}, fighters, discardLogger())

	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.RecordBout(ctx, BoutInput{
		Fighter1ID:     1,
		Fighter2ID:     2,
		Result:         models.ResultWin,
		Method:         models.MethodKO,
		Fighter1Points: 10,
		Fighter2Points: -3,
		Date:           date,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ResultWin, out.Records[0].Result)
	assert.Equal(t, models.ResultLoss, out.Records[1].Result)
	assert.Equal(t, "Bea", out.Records[0].OpponentName)
	assert.Equal(t, "Ana", out.Records[1].OpponentName)

	ana := fighters.standings[1]
	assert.Equal(t, 35, ana.Points)
	assert.Equal(t, 1, ana.Wins)
	assert.Equal(t, 1, ana.Knockouts)
	assert.Equal(t, models.TierSemiPro, ana.Tier)
	assert.InDelta(t, 100.0, ana.WinPercentage, 1e-9)

	bea := fighters.standings[2]
	assert.Equal(t, 37, bea.Points)
	assert.Equal(t, 1, bea.Losses)
	assert.Zero(t, bea.Knockouts)

	assert.Len(t, fighters.records, 2)
}

func TestFightServiceDemotesAfterLosingStreak(t *testing.T) {
	ctx := context.Background()
	pro := standing(1, "Ana", 100)
	pro.Tier = models.TierPro
	fighters := newFakeFighterRepo(pro, standing(2, "Bea", 40))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, fighters.CreateRecord(ctx, nil, &models.FightRecord{
			FighterID:    1,
			OpponentName: "Someone",
			Result:       models.ResultLoss,
			Method:       models.MethodDecision,
			Date:         base.AddDate(0, 0, i),
		}))
	}

	svc := NewFightService(&fakeTx{}, fighters, discardLogger())
	out, err := svc.RecordBout(ctx, BoutInput{
		Fighter1ID:     2,
		Fighter2ID:     1,
		Result:         models.ResultWin,
		Method:         models.MethodDecision,
		Fighter1Points: 5,
		Fighter2Points: -3,
		Date:           base.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	ana := out.Standings[1]
	assert.Equal(t, 97, ana.Points)
	assert.Equal(t, models.TierSemiPro, ana.Tier)
	assert.True(t, ana.Demoted)
}

func TestFightServiceValidation(t *testing.T) {
	fighters := newFakeFighterRepo(standing(1, "Ana", 0), standing(2, "Bea", 0))
	tx := &fakeTx{}
	svc := NewFightService(tx, fighters, discardLogger())

	tests := []struct {
		name string
		in   BoutInput
		err  error
	}{
		{"missing fighter", BoutInput{Fighter1ID: 1, Result: models.ResultWin, Method: models.MethodKO}, ErrInvalidBout},
		{"same fighter", BoutInput{Fighter1ID: 1, Fighter2ID: 1, Result: models.ResultWin, Method: models.MethodKO}, ErrInvalidBout},
		{"unknown result", BoutInput{Fighter1ID: 1, Fighter2ID: 2, Result: "Forfeit", Method: models.MethodKO}, ErrInvalidBout},
		{"missing method", BoutInput{Fighter1ID: 1, Fighter2ID: 2, Result: models.ResultWin}, ErrInvalidBout},
		{"knockout draw", BoutInput{Fighter1ID: 1, Fighter2ID: 2, Result: models.ResultDraw, Method: models.MethodTKO}, ErrInvalidBout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordBout(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Zero(t, tx.calls)

	_, err := svc.RecordBout(context.Background(), BoutInput{Fighter1ID: 1, Fighter2ID: 3, Result: models.ResultDraw, Method: models.MethodDecision})
	assert.ErrorIs(t, err, ErrFighterNotFound)
	assert.Empty(t, fighters.records)
}
