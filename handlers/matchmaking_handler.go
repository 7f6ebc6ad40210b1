package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dosada05/fight-league/matchmaking"
	"github.com/Dosada05/fight-league/services"
)

type MatchmakingHandler struct {
	matchmakingService   services.MatchmakingService
	recentOpponentWindow int
}

func NewMatchmakingHandler(ms services.MatchmakingService, recentOpponentWindow int) *MatchmakingHandler {
	return &MatchmakingHandler{
		matchmakingService:   ms,
		recentOpponentWindow: recentOpponentWindow,
	}
}

func (h *MatchmakingHandler) defaultCriteria() matchmaking.Criteria {
	c := matchmaking.DefaultCriteria()
	if h.recentOpponentWindow > 0 {
		c.RecentOpponentWindow = h.recentOpponentWindow
	}
	return c
}

func queryInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s query parameter: %q", key, raw)
	}
	return &v, nil
}

// criteriaFromQuery overlays the query parameters onto the defaults. Only the pool
// filters are caller-controlled; the pairwise rank, points and tier windows stay fixed.
func (h *MatchmakingHandler) criteriaFromQuery(q url.Values) (matchmaking.Criteria, error) {
	c := h.defaultCriteria()
	c.Timezone = strings.TrimSpace(q.Get("timezone"))
	c.WeightClass = strings.TrimSpace(q.Get("weight_class"))

	bounds := []struct {
		key string
		dst **int
	}{
		{"min_rank", &c.MinRank},
		{"max_rank", &c.MaxRank},
		{"min_points", &c.MinPoints},
		{"max_points", &c.MaxPoints},
	}
	for _, b := range bounds {
		v, err := queryInt(q, b.key)
		if err != nil {
			return c, err
		}
		*b.dst = v
	}

	if raw := strings.TrimSpace(q.Get("avoid_recent")); raw != "" {
		avoid, err := strconv.ParseBool(raw)
		if err != nil {
			return c, fmt.Errorf("invalid avoid_recent query parameter: %q", raw)
		}
		c.AvoidRecentOpponents = avoid
	}
	return c, nil
}

func (h *MatchmakingHandler) authorizedFighter(w http.ResponseWriter, r *http.Request) (int, bool) {
	fighterID, err := getIDFromURL(r, "fighterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, false
	}
	userID, isAdmin, err := actingFighter(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	if !isAdmin && userID != fighterID {
		forbiddenResponse(w, r, "fighters can only request their own matchmaking")
		return 0, false
	}
	return fighterID, true
}

// Suggestions godoc
// @Summary Ranked opponent suggestions for a fighter
// @Tags matchmaking
// @Produce json
// @Param fighterID path int true "Fighter ID"
// @Param timezone query string false "Preferred timezone"
// @Param min_rank query int false "Lowest acceptable rank number"
// @Param max_rank query int false "Highest acceptable rank number"
// @Param min_points query int false "Minimum points"
// @Param max_points query int false "Maximum points"
// @Param avoid_recent query bool false "Skip recent opponents (default true)"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /fighters/{fighterID}/suggestions [get]
func (h *MatchmakingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	fighterID, ok := h.authorizedFighter(w, r)
	if !ok {
		return
	}

	criteria, err := h.criteriaFromQuery(r.URL.Query())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	suggestions, err := h.matchmakingService.Suggestions(r.Context(), fighterID, criteria)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggestions": suggestions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutoAssign godoc
// @Summary Pick the single best opponent or sparring partner
// @Tags matchmaking
// @Accept json
// @Produce json
// @Param fighterID path int true "Fighter ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "No compatible partner"
// @Security BearerAuth
// @Router /fighters/{fighterID}/auto-assign [post]
func (h *MatchmakingHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	fighterID, ok := h.authorizedFighter(w, r)
	if !ok {
		return
	}

	var input struct {
		Kind     matchmaking.Kind `json:"kind"`
		Timezone string           `json:"timezone"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	criteria := h.defaultCriteria()
	criteria.Timezone = input.Timezone
	best, err := h.matchmakingService.AutoAssign(r.Context(), fighterID, input.Kind, criteria)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignment": best}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
