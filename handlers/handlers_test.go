package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/matchmaking"
	"github.com/Dosada05/fight-league/middleware"
	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchmakingService struct {
	gotFighter  int
	gotCriteria matchmaking.Criteria
	gotKind     matchmaking.Kind
	err         error
}

func (f *fakeMatchmakingService) Suggestions(ctx context.Context, fighterID int, criteria matchmaking.Criteria) ([]matchmaking.Suggestion, error) {
	f.gotFighter, f.gotCriteria = fighterID, criteria
	if f.err != nil {
		return nil, f.err
	}
	return []matchmaking.Suggestion{{Fighter: models.RankingEntry{Rank: 2}}}, nil
}

func (f *fakeMatchmakingService) AutoAssign(ctx context.Context, fighterID int, kind matchmaking.Kind, criteria matchmaking.Criteria) (*matchmaking.Suggestion, error) {
	f.gotFighter, f.gotKind, f.gotCriteria = fighterID, kind, criteria
	if f.err != nil {
		return nil, f.err
	}
	return &matchmaking.Suggestion{Fighter: models.RankingEntry{Rank: 4}}, nil
}

type fakeBracketService struct {
	services.BracketService
	advance func(matchID, winnerID int) (*brackets.Outcome, error)
}

func (f *fakeBracketService) AdvanceWinner(ctx context.Context, matchID, winnerID int) (*brackets.Outcome, error) {
	return f.advance(matchID, winnerID)
}

type fakeParticipantService struct {
	services.ParticipantService
	joined [2]int
}

func (f *fakeParticipantService) Join(ctx context.Context, tournamentID, fighterID int) (*models.TournamentParticipant, error) {
	f.joined = [2]int{tournamentID, fighterID}
	return &models.TournamentParticipant{TournamentID: tournamentID, FighterID: fighterID, Seed: 1, Status: models.ParticipantRegistered}, nil
}

func withClaims(userID int, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.ContextWithClaims(r.Context(), jwt.MapClaims{"user_id": float64(userID), "role": role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: fighter 9", services.ErrFighterNotFound), http.StatusNotFound},
		{brackets.ErrMatchNotFound, http.StatusNotFound},
		{matchmaking.ErrNoCompatibleOpponent, http.StatusNotFound},
		{services.ErrBracketNotGenerated, http.StatusNotFound},
		{services.ErrTournamentFull, http.StatusConflict},
		{fmt.Errorf("load: %w", brackets.ErrTournamentNotOpen), http.StatusConflict},
		{brackets.ErrMatchAlreadyResolved, http.StatusConflict},
		{brackets.ErrDeadlineNotPassed, http.StatusConflict},
		{brackets.ErrMatchNotReady, http.StatusConflict},
		{brackets.ErrInsufficientParticipants, http.StatusUnprocessableEntity},
		{brackets.ErrWinnerNotInMatch, http.StatusUnprocessableEntity},
		{matchmaking.ErrInvalidCriteria, http.StatusUnprocessableEntity},
		{services.ErrInvalidBout, http.StatusUnprocessableEntity},
		{services.ErrNotEligible, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "error")
		})
	}
}

func TestMatchmakingSuggestions(t *testing.T) {
	svc := &fakeMatchmakingService{}
	h := NewMatchmakingHandler(svc, 7)

	serve := func(userID int, role, target string) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.With(withClaims(userID, role)).Get("/fighters/{fighterID}/suggestions", h.Suggestions)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	t.Run("query overrides defaults", func(t *testing.T) {
		rec := serve(3, middleware.RoleFighter,
			"/fighters/3/suggestions?timezone=JST&min_rank=2&max_points=100&avoid_recent=false")
		require.Equal(t, http.StatusOK, rec.Code)

		c := svc.gotCriteria
		assert.Equal(t, 3, svc.gotFighter)
		assert.Equal(t, "JST", c.Timezone)
		require.NotNil(t, c.MinRank)
		assert.Equal(t, 2, *c.MinRank)
		assert.Nil(t, c.MaxRank)
		require.NotNil(t, c.MaxPoints)
		assert.Equal(t, 100, *c.MaxPoints)
		assert.False(t, c.AvoidRecentOpponents)
		assert.Equal(t, matchmaking.DefaultRankWindow, c.RankWindow)
		assert.Equal(t, matchmaking.DefaultPointsWindow, c.PointsWindow)
		assert.Equal(t, 7, c.RecentOpponentWindow)

		var suggestions []matchmaking.Suggestion
		require.NoError(t, json.Unmarshal(decodeBody(t, rec)["suggestions"], &suggestions))
		assert.Len(t, suggestions, 1)
	})

	t.Run("hard filter windows cannot be widened", func(t *testing.T) {
		rec := serve(3, middleware.RoleFighter,
			"/fighters/3/suggestions?rank_window=10&points_window=100&tier_tolerance=1")
		require.Equal(t, http.StatusOK, rec.Code)

		c := svc.gotCriteria
		assert.Equal(t, matchmaking.DefaultRankWindow, c.RankWindow)
		assert.Equal(t, matchmaking.DefaultPointsWindow, c.PointsWindow)
		assert.Zero(t, c.TierTolerance)
	})

	t.Run("other fighters are forbidden", func(t *testing.T) {
		rec := serve(4, middleware.RoleFighter, "/fighters/3/suggestions")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admins may ask for anyone", func(t *testing.T) {
		rec := serve(1, middleware.RoleAdmin, "/fighters/3/suggestions")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed query", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, serve(3, middleware.RoleFighter, "/fighters/3/suggestions?min_rank=first").Code)
		assert.Equal(t, http.StatusBadRequest, serve(3, middleware.RoleFighter, "/fighters/3/suggestions?avoid_recent=maybe").Code)
		assert.Equal(t, http.StatusBadRequest, serve(3, middleware.RoleFighter, "/fighters/abc/suggestions").Code)
	})
}

func TestMatchmakingAutoAssign(t *testing.T) {
	svc := &fakeMatchmakingService{}
	h := NewMatchmakingHandler(svc, 0)
	router := chi.NewRouter()
	router.With(withClaims(5, middleware.RoleFighter)).Post("/fighters/{fighterID}/auto-assign", h.AutoAssign)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fighters/5/auto-assign", strings.NewReader(`{"kind":"sparring","timezone":"CET"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, matchmaking.KindSparring, svc.gotKind)
	assert.Equal(t, "CET", svc.gotCriteria.Timezone)
	assert.Equal(t, matchmaking.DefaultRecentOpponentWindow, svc.gotCriteria.RecentOpponentWindow)

	svc.err = matchmaking.ErrNoCompatibleOpponent
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fighters/5/auto-assign", strings.NewReader(`{"kind":"opponent"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fighters/5/auto-assign", strings.NewReader(`{"kind":"opponent","extra":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchRecordWinner(t *testing.T) {
	winner := 11
	svc := &fakeBracketService{advance: func(matchID, winnerID int) (*brackets.Outcome, error) {
		if matchID == 2 {
			return nil, brackets.ErrMatchAlreadyResolved
		}
		return &brackets.Outcome{Match: &models.BracketMatch{ID: matchID, WinnerID: &winner, Status: models.MatchCompleted}}, nil
	}}
	h := NewMatchHandler(svc)
	router := chi.NewRouter()
	router.Post("/matches/{matchID}/winner", h.RecordWinner)

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		return rec
	}

	rec := post("/matches/1/winner", `{"winner_id": 11}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcome brackets.Outcome
	require.NoError(t, json.Unmarshal(decodeBody(t, rec)["outcome"], &outcome))
	require.NotNil(t, outcome.Match)
	assert.Equal(t, models.MatchCompleted, outcome.Match.Status)

	assert.Equal(t, http.StatusConflict, post("/matches/2/winner", `{"winner_id": 11}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/matches/1/winner", `{"winner_id": 0}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/matches/1/winner", `{"winner_id": "x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/matches/1/winner", ``).Code)
	assert.Equal(t, http.StatusBadRequest, post("/matches/0/winner", `{"winner_id": 11}`).Code)
}

func TestParticipantJoinUsesAuthenticatedFighter(t *testing.T) {
	svc := &fakeParticipantService{}
	h := NewParticipantHandler(svc)
	router := chi.NewRouter()
	router.With(withClaims(8, middleware.RoleFighter)).Post("/tournaments/{tournamentID}/participants", h.Join)
	router.Post("/anonymous/{tournamentID}", h.Join)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/3/participants", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, [2]int{3, 8}, svc.joined)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/anonymous/3", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteJSONHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	headers := http.Header{}
	headers.Set("Location", "/tournaments/1/bracket")
	require.NoError(t, writeJSON(rec, http.StatusCreated, jsonResponse{"at": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, headers))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/tournaments/1/bracket", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "2026-01-01T00:00:00Z")
}
