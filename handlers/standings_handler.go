package handlers

import (
	"net/http"

	"github.com/pitchside/tournament-engine/services"
)

type StandingsHandler struct {
	standings services.StandingsService
}

func NewStandingsHandler(standings services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standings: standings}
}

func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standings.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil)
}

func (h *StandingsHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.standings.GetGroupStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"groups": tables}, nil)
}
