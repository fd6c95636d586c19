package handlers

import (
	"net/http"

	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	match, err := h.matchService.StartMatch(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) UpdateLiveScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var live models.GameScore
	if err := readJSON(w, r, &live); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.UpdateLiveScore(r.Context(), matchID, live)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Games []models.GameScore `json:"games"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.SubmitScore(r.Context(), matchID, input.Games)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) ApproveResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	match, err := h.matchService.ApproveResult(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) RejectResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	match, err := h.matchService.RejectResult(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) Walkover(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		WinnerSide models.MatchSide `json:"winner_side"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.Walkover(r.Context(), matchID, input.WinnerSide)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}
