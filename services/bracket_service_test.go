package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bracketNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type bracketFixture struct {
	svc          *bracketService
	tournaments  *fakeTournamentRepo
	participants *fakeParticipantRepo
	matches      *fakeMatchRepo
	notifier     *fakeNotifier
	archive      *fakeUploader
}

func newBracketFixture(t *testing.T, fighterIDs ...int) *bracketFixture {
	t.Helper()
	f := &bracketFixture{
		tournaments:  newFakeTournamentRepo(models.Tournament{ID: 1, Status: models.StatusOpen, Format: models.FormatSingleElimination}),
		participants: &fakeParticipantRepo{},
		matches:      newFakeMatchRepo(),
		notifier:     &fakeNotifier{},
		archive:      &fakeUploader{},
	}
	for i, id := range fighterIDs {
		require.NoError(t, f.participants.Create(context.Background(), nil, &models.TournamentParticipant{
			TournamentID: 1,
			FighterID:    id,
			Seed:         i + 1,
			Status:       models.ParticipantCheckedIn,
		}))
	}
	svc := NewBracketService(&fakeTx{}, f.tournaments, f.participants, f.matches, f.notifier, f.archive,
		brackets.Policy{Deadline: 48 * time.Hour}, discardLogger())
	f.svc = svc.(*bracketService)
	f.svc.now = func() time.Time { return bracketNow }
	return f
}

func (f *bracketFixture) matchAt(t *testing.T, round, number int) *models.BracketMatch {
	t.Helper()
	m, err := f.matches.FindByPosition(context.Background(), nil, 1, round, number)
	require.NoError(t, err)
	return m
}

func TestBracketServiceFullTournament(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t, 10, 20, 30, 40)

	view, err := f.svc.Generate(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Rounds, 2)
	assert.Len(t, view.Rounds[0].Matches, 2)
	assert.Len(t, view.Rounds[1].Matches, 1)
	assert.Equal(t, models.StatusInProgress, f.tournaments.tournaments[1].Status)
	assert.Equal(t, models.ParticipantActive, f.participants.status(1, 10))

	_, err = f.svc.Generate(ctx, 1)
	assert.ErrorIs(t, err, brackets.ErrTournamentNotOpen)

	semi1, semi2 := f.matchAt(t, 1, 1), f.matchAt(t, 1, 2)
	_, err = f.svc.AdvanceWinner(ctx, semi1.ID, 10)
	require.NoError(t, err)
	out, err := f.svc.AdvanceWinner(ctx, semi2.ID, 40)
	require.NoError(t, err)
	require.NotNil(t, out.NextMatch)
	assert.Equal(t, models.MatchPending, out.NextMatch.Status)
	assert.Equal(t, models.ParticipantEliminated, f.participants.status(1, 30))

	final := f.matchAt(t, 2, 1)
	out, err = f.svc.AdvanceWinner(ctx, final.ID, 10)
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, 10, out.Result.ChampionID)
	require.NotNil(t, out.Result.RunnerUpID)
	assert.Equal(t, 40, *out.Result.RunnerUpID)

	tournament := f.tournaments.tournaments[1]
	assert.Equal(t, models.StatusCompleted, tournament.Status)
	require.NotNil(t, tournament.WinnerID)
	assert.Equal(t, 10, *tournament.WinnerID)

	_, err = f.svc.AdvanceWinner(ctx, final.ID, 40)
	assert.ErrorIs(t, err, brackets.ErrMatchAlreadyResolved)

	assert.Equal(t, []string{
		brackets.MessageBracketGenerated,
		brackets.MessageMatchUpdated, brackets.MessageMatchUpdated,
		brackets.MessageMatchUpdated, brackets.MessageMatchUpdated,
		brackets.MessageMatchUpdated, brackets.MessageTournamentComplete,
	}, f.notifier.types())

	body, ok := f.archive.objects[ArchiveKey(1)]
	require.True(t, ok, "completed bracket should be archived")
	var archived BracketView
	require.NoError(t, json.Unmarshal(body, &archived))
	assert.Equal(t, models.StatusCompleted, archived.Status)
	require.NotNil(t, archived.Result)
	assert.Equal(t, 10, archived.Result.ChampionID)

	current, err := f.svc.Bracket(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, archived.Result.ChampionID, current.Result.ChampionID)
}

func TestBracketServiceGenerateNeedsCheckedInFighters(t *testing.T) {
	f := newBracketFixture(t, 10)
	require.NoError(t, f.participants.Create(context.Background(), nil, &models.TournamentParticipant{
		TournamentID: 1, FighterID: 20, Seed: 2, Status: models.ParticipantRegistered,
	}))

	_, err := f.svc.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, brackets.ErrInsufficientParticipants)
	assert.Empty(t, f.matches.matches)
	assert.Equal(t, models.StatusOpen, f.tournaments.tournaments[1].Status)
}

func TestBracketServiceBracketNotGenerated(t *testing.T) {
	f := newBracketFixture(t)
	_, err := f.svc.Bracket(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBracketNotGenerated)

	_, err = f.svc.Bracket(context.Background(), 2)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestBracketServiceMatchTransitions(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t, 10, 20)
	_, err := f.svc.Generate(ctx, 1)
	require.NoError(t, err)
	final := f.matchAt(t, 1, 1)

	m, err := f.svc.CheckIn(ctx, final.ID, 20)
	require.NoError(t, err)
	require.NotNil(t, m.Fighter2CheckIn)

	_, err = f.svc.CheckIn(ctx, final.ID, 99)
	assert.ErrorIs(t, err, brackets.ErrFighterNotInMatch)

	_, err = f.svc.Schedule(ctx, final.ID, time.Time{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.Start(ctx, final.ID)
	assert.ErrorIs(t, err, brackets.ErrInvalidMatchTransition)

	m, err = f.svc.Schedule(ctx, final.ID, bracketNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.MatchScheduled, m.Status)

	m, err = f.svc.Start(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchInProgress, m.Status)

	_, err = f.svc.ResolveBye(ctx, final.ID)
	assert.ErrorIs(t, err, brackets.ErrDeadlineNotPassed)

	_, err = f.svc.CheckIn(ctx, 404, 10)
	assert.ErrorIs(t, err, brackets.ErrMatchNotFound)
}

func TestBracketServiceSweepExpired(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t, 10, 20, 30)
	_, err := f.svc.Generate(ctx, 1)
	require.NoError(t, err)

	resolved, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved, "nothing is overdue before the deadline")

	f.svc.now = func() time.Time { return bracketNow.Add(72 * time.Hour) }
	resolved, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	assert.Equal(t, models.MatchNoShow, f.matchAt(t, 1, 1).Status)
	assert.Equal(t, models.ParticipantEliminated, f.participants.status(1, 10))
	assert.Equal(t, models.ParticipantEliminated, f.participants.status(1, 20))

	final := f.matchAt(t, 2, 1)
	assert.Equal(t, models.MatchBye, final.Status)
	require.NotNil(t, final.WinnerID)
	assert.Equal(t, 30, *final.WinnerID)

	result := f.tournaments.results[1]
	require.NotNil(t, result)
	assert.Equal(t, 30, result.ChampionID)
	assert.Nil(t, result.RunnerUpID)

	resolved, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved)
}
