package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/fight-league/handlers"
	"github.com/Dosada05/fight-league/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-secret"

// newTestRouter wires handlers with no services behind them, so only requests that are
// rejected before reaching a handler body may be sent.
func newTestRouter() *chi.Mux {
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Ranking:     handlers.NewRankingHandler(nil),
		Matchmaking: handlers.NewMatchmakingHandler(nil, 5),
		Bout:        handlers.NewBoutHandler(nil),
		Participant: handlers.NewParticipantHandler(nil),
		Tournament:  handlers.NewTournamentHandler(nil, nil),
		Match:       handlers.NewMatchHandler(nil),
		WebSocket:   handlers.NewWebSocketHandler(nil, nil, nil, nil),
	}, Options{JWTSecret: secret, MatchmakingRateLimit: 60})
	return router
}

func bearer(t *testing.T, userID int, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID, "role": role}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouteGuards(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"bouts need a token", http.MethodPost, "/bouts", "", http.StatusUnauthorized},
		{"bouts need an admin", http.MethodPost, "/bouts", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"bracket generation needs an admin", http.MethodPost, "/tournaments/1/bracket", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"cancel needs an admin", http.MethodPost, "/tournaments/1/cancel", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"joining needs a token", http.MethodPost, "/tournaments/1/participants", "", http.StatusUnauthorized},
		{"match check-in needs a token", http.MethodPost, "/matches/1/check-in", "", http.StatusUnauthorized},
		{"recording a winner needs an admin", http.MethodPost, "/matches/1/winner", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"resolving a bye needs an admin", http.MethodPost, "/matches/1/resolve-bye", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"suggestions need a token", http.MethodGet, "/fighters/1/suggestions", "", http.StatusUnauthorized},
		{"suggestions for someone else", http.MethodGet, "/fighters/1/suggestions", bearer(t, 2, middleware.RoleFighter), http.StatusForbidden},
		{"health", http.MethodGet, "/healthz", "", http.StatusNoContent},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
