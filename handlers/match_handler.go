package handlers

import (
	"net/http"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/services"
)

type MatchHandler struct {
	matches    services.MatchService
	simulation services.SimulationService
}

func NewMatchHandler(matches services.MatchService, simulation services.SimulationService) *MatchHandler {
	return &MatchHandler{matches: matches, simulation: simulation}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matches.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
}

func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.MatchFilter{}
	if raw := r.URL.Query().Get("stage"); raw != "" {
		kind := models.StageKind(raw)
		filter.StageKind = &kind
	}
	if raw := r.URL.Query().Get("group"); raw != "" {
		filter.StageGroup = &raw
	}
	if raw := r.URL.Query().Get("round"); raw != "" {
		filter.StageLabel = &raw
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		filter.Status = &status
	}

	matches, err := h.matches.ListByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
}

// SubmitScore records or corrects a match result.
func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matches.SubmitScore(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
}

func (h *MatchHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.simulation.SimulateMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
}
