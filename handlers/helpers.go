package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/middleware"
	"github.com/courtware/draw-system/repositories"
	"github.com/courtware/draw-system/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func errorResponse(w http.ResponseWriter, status int, message interface{}) {
	writeJSON(w, status, jsonResponse{"error": message})
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("internal server error")
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

// callerID returns the authenticated user's id, zero when the route is not
// behind the auth middleware.
func callerID(r *http.Request) int {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

func urlParamInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return value, nil
}

// mapServiceError converts service and repository errors into HTTP responses.
func mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrDivisionNotFound),
		errors.Is(err, repositories.ErrCourtNotFound),
		errors.Is(err, repositories.ErrEntryNotFound),
		errors.Is(err, repositories.ErrTeamNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrDrawStateNotFound),
		errors.Is(err, services.ErrDrawNotGenerated):
		errorResponse(w, http.StatusNotFound, err.Error())

	case errors.Is(err, repositories.ErrUserEmailConflict),
		errors.Is(err, repositories.ErrTournamentNameConflict),
		errors.Is(err, repositories.ErrEntryConflict),
		errors.Is(err, repositories.ErrCourtOccupied),
		errors.Is(err, services.ErrDrawAlreadyGenerated),
		errors.Is(err, services.ErrBracketAlreadyBuilt),
		errors.Is(err, services.ErrMatchAlreadyDecided):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrRoundNotComplete),
		errors.Is(err, services.ErrSwissNotComplete),
		errors.Is(err, services.ErrSwissRoundsExhausted),
		errors.Is(err, services.ErrKnockoutDisabled),
		errors.Is(err, services.ErrInvalidMatchTransition),
		errors.Is(err, services.ErrScoreRequired),
		errors.Is(err, services.ErrScoreTied),
		errors.Is(err, services.ErrMatchSlotsIncomplete),
		errors.Is(err, services.ErrSeedLocked),
		errors.Is(err, services.ErrSeedOutOfRange),
		errors.Is(err, services.ErrEntryWithdrawn),
		errors.Is(err, services.ErrDivisionEventType),
		errors.Is(err, services.ErrTeamSizeInvalid),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTournamentDatesRequired),
		errors.Is(err, services.ErrTournamentInvalidDateRange),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrRestWindowNegative),
		errors.Is(err, services.ErrOverrideReasonRequired),
		errors.Is(err, repositories.ErrEntrySideViolation),
		errors.Is(err, draws.ErrRoundCountOutOfRange),
		errors.Is(err, draws.ErrQualifierCountNotPowerOf2),
		errors.Is(err, draws.ErrQualifierCountTooLarge),
		errors.Is(err, draws.ErrNotEnoughEntries),
		errors.Is(err, draws.ErrNoCompletedMatches),
		errors.Is(err, draws.ErrNoStandings),
		errors.Is(err, draws.ErrPairingFailed):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrAssignmentBlocked),
		errors.Is(err, services.ErrOverrideRequired):
		// The handler usually writes the conflict payload itself; this is
		// the fallback.
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrForbiddenOperation):
		errorResponse(w, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, err.Error())

	default:
		serverErrorResponse(w, err)
	}
}
