package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/fight-league/middleware"
	"github.com/Dosada05/fight-league/services"
)

type MatchHandler struct {
	bracketService services.BracketService
}

func NewMatchHandler(bs services.BracketService) *MatchHandler {
	return &MatchHandler{bracketService: bs}
}

func writeMatchResult(w http.ResponseWriter, r *http.Request, data jsonResponse, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckIn godoc
// @Summary Check the current fighter in for a bracket match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/check-in [post]
func (h *MatchHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	fighterID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	match, err := h.bracketService.CheckIn(r.Context(), matchID, fighterID)
	writeMatchResult(w, r, jsonResponse{"match": match}, err)
}

// Schedule godoc
// @Summary Schedule a match whose two fighters are known
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/schedule [post]
func (h *MatchHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ScheduledDate time.Time `json:"scheduled_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracketService.Schedule(r.Context(), matchID, input.ScheduledDate)
	writeMatchResult(w, r, jsonResponse{"match": match}, err)
}

// Start godoc
// @Summary Mark a scheduled match as in progress
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracketService.Start(r.Context(), matchID)
	writeMatchResult(w, r, jsonResponse{"match": match}, err)
}

// RecordWinner godoc
// @Summary Record the winner of a match and advance them
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Match already resolved"
// @Failure 422 {object} map[string]string "Winner is not in the match"
// @Security BearerAuth
// @Router /matches/{matchID}/winner [post]
func (h *MatchHandler) RecordWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerID int `json:"winner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id must be a positive integer"))
		return
	}

	outcome, err := h.bracketService.AdvanceWinner(r.Context(), matchID, input.WinnerID)
	writeMatchResult(w, r, jsonResponse{"outcome": outcome}, err)
}

// ResolveBye godoc
// @Summary Settle a match whose deadline has passed
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Deadline not passed or an earlier match is open"
// @Security BearerAuth
// @Router /matches/{matchID}/resolve-bye [post]
func (h *MatchHandler) ResolveBye(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.bracketService.ResolveBye(r.Context(), matchID)
	writeMatchResult(w, r, jsonResponse{"outcome": outcome}, err)
}
