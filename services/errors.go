package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Draw progression
	ErrDrawAlreadyGenerated = errors.New("draw has already been generated for this division")
	ErrDrawNotGenerated     = errors.New("no draw has been generated for this division")
	ErrRoundNotComplete     = errors.New("current round is not complete")
	ErrSwissRoundsExhausted = errors.New("all swiss rounds have been generated")
	ErrSwissNotComplete     = errors.New("swiss phase is not complete")
	ErrBracketAlreadyBuilt  = errors.New("knockout bracket has already been built")
	ErrKnockoutDisabled     = errors.New("division has no knockout phase configured")

	// Match lifecycle
	ErrInvalidMatchTransition = errors.New("invalid match status transition")
	ErrMatchAlreadyDecided    = errors.New("match already has a recorded result")
	ErrScoreRequired          = errors.New("at least one completed game is required")
	ErrScoreTied              = errors.New("submitted games do not decide a winner")
	ErrMatchSlotsIncomplete   = errors.New("match does not have both entries assigned")

	// Scheduling
	ErrAssignmentBlocked      = errors.New("court assignment is blocked by conflicts")
	ErrOverrideRequired       = errors.New("court assignment has warnings and requires an override")
	ErrOverrideReasonRequired = errors.New("override reason is required")

	// Registration
	ErrSeedLocked          = errors.New("seeds cannot change after the draw is generated")
	ErrEntryAlreadyActive  = errors.New("entry is already active")
	ErrEntryWithdrawn      = errors.New("entry has been withdrawn")
	ErrDivisionEventType   = errors.New("entry side does not match the division event type")
	ErrRegistrationClosed  = errors.New("tournament is not accepting registrations")
	ErrTeamSizeInvalid     = errors.New("doubles team must have exactly two members")
	ErrSeedOutOfRange      = errors.New("seed must be a positive number")
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")
	ErrTournamentNotActive = errors.New("tournament is not active")

	// Tournament administration
	ErrTournamentDatesRequired           = errors.New("tournament dates are required")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrRestWindowNegative                = errors.New("rest window cannot be negative")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
)
