package domain

import "errors"

var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Check errors
	ErrStatusUnset      = errors.New("check status could not be derived, set it manually")
	ErrInvalidStatus    = errors.New("invalid check status")
	ErrInvalidOperation = errors.New("invalid check operation")
	ErrInvalidValue     = errors.New("check value must be positive")

	// Lookup errors
	ErrBankNotFound    = errors.New("bank not found")
	ErrAccountNotFound = errors.New("bank account not found")
	ErrPartyNotFound   = errors.New("responsible party not found")
	ErrAccessNotFound  = errors.New("access not found")
	ErrCheckNotFound   = errors.New("check not found")
)
