package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/fight-league/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rs services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rs}
}

// ListRankings godoc
// @Summary Current league rankings
// @Tags rankings
// @Produce json
// @Param weight_class query string false "Limit the ranking to one weight class"
// @Success 200 {object} map[string]interface{}
// @Router /rankings [get]
func (h *RankingHandler) ListRankings(w http.ResponseWriter, r *http.Request) {
	weightClass := strings.TrimSpace(r.URL.Query().Get("weight_class"))

	entries, err := h.rankingService.Rankings(r.Context(), weightClass)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
