package handlers

import (
	"net/http"

	"github.com/courtware/draw-system/services"
)

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) Register(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input services.RegisterEntryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	entry, err := h.entryService.Register(r.Context(), divisionID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) ListByDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	entries, err := h.entryService.ListByDivision(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) SetSeed(w http.ResponseWriter, r *http.Request) {
	entryID, err := urlParamInt(r, "entryID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Seed *int `json:"seed"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	entry, err := h.entryService.SetSeed(r.Context(), entryID, input.Seed)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	entryID, err := urlParamInt(r, "entryID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	entry, err := h.entryService.Withdraw(r.Context(), entryID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string `json:"name"`
		MemberIDs []int  `json:"member_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.entryService.CreateTeam(r.Context(), input.Name, input.MemberIDs)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}
