package handlers

import (
	"net/http"

	"github.com/courtware/draw-system/services"
)

type DrawHandler struct {
	drawService      services.DrawService
	standingsService services.StandingsService
}

func NewDrawHandler(drawService services.DrawService, standingsService services.StandingsService) *DrawHandler {
	return &DrawHandler{
		drawService:      drawService,
		standingsService: standingsService,
	}
}

// GenerateRound1 godoc
// @Summary Generate the first swiss round for a division
// @Tags draws
// @Produce json
// @Param divisionID path int true "Division ID"
// @Success 201 {object} services.GeneratedRound
// @Router /divisions/{divisionID}/draw/round1 [post]
func (h *DrawHandler) GenerateRound1(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	round, err := h.drawService.GenerateRound1(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

// GenerateNextRound godoc
// @Summary Pair the next swiss round from current standings
// @Tags draws
// @Produce json
// @Param divisionID path int true "Division ID"
// @Success 201 {object} services.GeneratedRound
// @Router /divisions/{divisionID}/draw/next-round [post]
func (h *DrawHandler) GenerateNextRound(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	round, err := h.drawService.GenerateNextRound(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

// BuildKnockoutBracket godoc
// @Summary Build the knockout bracket from final swiss standings
// @Tags draws
// @Produce json
// @Param divisionID path int true "Division ID"
// @Success 201 {array} models.Match
// @Router /divisions/{divisionID}/draw/knockout [post]
func (h *DrawHandler) BuildKnockoutBracket(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	matches, err := h.drawService.BuildKnockoutBracket(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, matches)
}

func (h *DrawHandler) GetFullDraw(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	view, err := h.drawService.GetFullDraw(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DrawHandler) ResetDraw(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.drawService.ResetDraw(r.Context(), divisionID); err != nil {
		mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DrawHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	standings, err := h.standingsService.GetStandings(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *DrawHandler) GetQualifiers(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	qualifiers, err := h.standingsService.Qualifiers(r.Context(), divisionID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qualifiers)
}
