package handlers

import (
	"net/http"

	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizerID := callerID(r)
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), organizerID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tournament)
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournament)
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *models.TournamentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		value := models.TournamentStatus(raw)
		status = &value
	}
	tournaments, err := h.tournamentService.List(r.Context(), status)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournaments)
}

func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournament)
}

// UploadLogo accepts the raw image in the request body; the content type
// header decides the stored extension.
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	contentType := r.Header.Get("Content-Type")

	tournament, err := h.tournamentService.UploadLogo(r.Context(), id, contentType, r.Body)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournament)
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) CreateDivision(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input services.CreateDivisionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	division, err := h.tournamentService.CreateDivision(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, division)
}

func (h *TournamentHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	divisions, err := h.tournamentService.ListDivisions(r.Context(), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, divisions)
}

func (h *TournamentHandler) DeleteDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.tournamentService.DeleteDivision(r.Context(), divisionID); err != nil {
		mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) AddCourt(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	court, err := h.tournamentService.AddCourt(r.Context(), tournamentID, input.Name)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, court)
}

func (h *TournamentHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	courts, err := h.tournamentService.ListCourts(r.Context(), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courts)
}

func (h *TournamentHandler) RemoveCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := urlParamInt(r, "courtID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.tournamentService.RemoveCourt(r.Context(), courtID); err != nil {
		mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
