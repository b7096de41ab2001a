package handlers

import (
	"net/http"
	"time"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/repositories"
	"github.com/pitchside/tournament-engine/services"
)

type TournamentHandler struct {
	tournaments services.TournamentService
	fixtures    services.FixtureService
	simulation  services.SimulationService
}

func NewTournamentHandler(
	tournaments services.TournamentService,
	fixtures services.FixtureService,
	simulation services.SimulationService,
) *TournamentHandler {
	return &TournamentHandler{
		tournaments: tournaments,
		fixtures:    fixtures,
		simulation:  simulation,
	}
}

type tournamentInput struct {
	Name          string                  `json:"name"`
	Description   *string                 `json:"description"`
	City          string                  `json:"city"`
	Format        models.TournamentFormat `json:"format"`
	StructureJSON *string                 `json:"structure_json"`
	TeamMin       int                     `json:"team_min"`
	TeamMax       int                     `json:"team_max"`
	EntryFee      float64                 `json:"entry_fee"`
	StartDate     time.Time               `json:"start_date"`
	EndDate       time.Time               `json:"end_date"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t := &models.Tournament{
		Name:          input.Name,
		Description:   input.Description,
		City:          input.City,
		Format:        input.Format,
		StructureJSON: input.StructureJSON,
		TeamMin:       input.TeamMin,
		TeamMax:       input.TeamMax,
		EntryFee:      input.EntryFee,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}
	if err := h.tournaments.CreateTournament(r.Context(), t); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t}, nil)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournaments.GetTournamentDetail(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil)
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{}
	if raw := r.URL.Query().Get("format"); raw != "" {
		format := models.TournamentFormat(raw)
		filter.Format = &format
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		filter.Status = &status
	}

	tournaments, err := h.tournaments.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t := &models.Tournament{
		ID:            id,
		Name:          input.Name,
		Description:   input.Description,
		City:          input.City,
		Format:        input.Format,
		StructureJSON: input.StructureJSON,
		TeamMin:       input.TeamMin,
		TeamMax:       input.TeamMax,
		EntryFee:      input.EntryFee,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}
	if err := h.tournaments.UpdateTournament(r.Context(), t); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil)
}

func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournaments.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil)
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournaments.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.fixtures.GenerateFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if len(result.CreatedMatches) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, jsonResponse{"result": result}, nil)
}

func (h *TournamentHandler) ValidateFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reports, err := h.fixtures.ValidateFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"reports": reports}, nil)
}

func (h *TournamentHandler) RepairFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.fixtures.RepairFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil)
}

func (h *TournamentHandler) SimulateRound(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.simulation.SimulateRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil)
}

func (h *TournamentHandler) ResetFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournaments.ResetFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil)
}

// UploadHeroImage accepts a multipart form with a "hero" file field.
func (h *TournamentHandler) UploadHeroImage(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := formFile(r, "hero")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	t, err := h.tournaments.UploadHeroImage(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil)
}
