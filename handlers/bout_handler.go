package handlers

import (
	"net/http"

	"github.com/Dosada05/fight-league/services"
)

type BoutHandler struct {
	fightService services.FightService
}

func NewBoutHandler(fs services.FightService) *BoutHandler {
	return &BoutHandler{fightService: fs}
}

// RecordBout godoc
// @Summary Record a finished bout
// @Tags bouts
// @Accept json
// @Produce json
// @Param body body services.BoutInput true "Bout, from fighter 1's side"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bouts [post]
func (h *BoutHandler) RecordBout(w http.ResponseWriter, r *http.Request) {
	var input services.BoutInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.fightService.RecordBout(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bout": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
