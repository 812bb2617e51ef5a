package domain

import "errors"

// Failure kinds returned by the registry, issuer, store adapter and verifier.
// Callers branch on them with errors.Is; the wrapped message carries detail.
var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyRegistered     = errors.New("account already registered")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrSigningFailure        = errors.New("signing failure")
	ErrPersistenceFailure    = errors.New("persistence failure")
	ErrRemoteProviderFailure = errors.New("remote provider failure")
	ErrVerificationFailure   = errors.New("verification failure")
	ErrMissingAuthorization  = errors.New("missing authorization")
)
