package services

import "errors"

// Shared service-level errors, mapped to HTTP status codes by the
// handler layer.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTeamNameRequired    = errors.New("team name is required")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrTournamentFull      = errors.New("tournament registration is full")
	ErrRosterBelowMinimum  = errors.New("not enough registered teams to start the tournament")

	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrRegistrationConflict   = errors.New("team is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	ErrTeamNotFound         = errors.New("team not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity         = errors.New("tournament capacity bounds are invalid")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	ErrMatchAlreadyScheduled = errors.New("match has no result to correct")
	ErrScoreInvalid          = errors.New("scores must be non-negative")
	ErrPenaltiesInvalid      = errors.New("penalty scores must be non-negative and unequal")

	ErrUploadInvalidContentType = errors.New("unsupported file content type")
	ErrUploadsDisabled          = errors.New("media uploads are not configured")
)
