package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidBout      = errors.New("invalid bout")

	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentFull       = errors.New("tournament registration is full")
	ErrRegistrationConflict = errors.New("fighter is already registered for this tournament")
	ErrNotEligible          = errors.New("fighter is not eligible for this tournament")
	ErrCheckInNotAllowed    = errors.New("participant cannot check in from its current status")
	ErrWithdrawNotAllowed   = errors.New("participant cannot withdraw once the bracket is running")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrFighterNotFound     = errors.New("fighter not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")

	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrBracketNotGenerated               = errors.New("bracket has not been generated for this tournament")
)
