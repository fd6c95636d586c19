package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtware/draw-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// CheckAssignment runs the conflict detector without committing anything.
func (h *ScheduleHandler) CheckAssignment(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	courtID, err := strconv.Atoi(r.URL.Query().Get("court_id"))
	if err != nil || courtID < 1 {
		badRequestResponse(w, errors.New("invalid court_id query parameter"))
		return
	}

	conflicts, err := h.scheduleService.CheckAssignment(r.Context(), matchID, courtID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"conflicts": conflicts})
}

func (h *ScheduleHandler) AssignCourt(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		CourtID  int     `json:"court_id"`
		Override *string `json:"override_reason,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.CourtID < 1 {
		badRequestResponse(w, errors.New("court_id is required"))
		return
	}

	var override *services.OverrideInput
	if input.Override != nil {
		override = &services.OverrideInput{
			Reason:    *input.Override,
			CreatedBy: callerID(r),
		}
	}

	result, err := h.scheduleService.AssignCourt(r.Context(), matchID, input.CourtID, override)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, services.ErrAssignmentBlocked),
		errors.Is(err, services.ErrOverrideRequired):
		// Surface the conflicts so the client can prompt for an override.
		writeJSON(w, http.StatusConflict, jsonResponse{
			"error":     err.Error(),
			"conflicts": result.Conflicts,
		})
	default:
		mapServiceError(w, err)
	}
}

func (h *ScheduleHandler) ClearAssignment(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	match, err := h.scheduleService.ClearAssignment(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *ScheduleHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	overrides, err := h.scheduleService.ListOverrides(r.Context(), matchID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}
