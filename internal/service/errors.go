package service

import "errors"

var (
	// ErrSyncInProgress is returned when another default-resource sync holds the user's lock
	ErrSyncInProgress = errors.New("xero sync already in progress")

	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrJobNotFound is returned when the quoted job does not exist for the user
	ErrJobNotFound = errors.New("job not found")

	// ErrEmptyJob is returned when a job has no labour or material lines to quote
	ErrEmptyJob = errors.New("job has no labour or material lines")

	// ErrUnauthorized is returned when request credentials cannot be verified
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedProvider is returned for an unknown identity provider
	ErrUnsupportedProvider = errors.New("unsupported identity provider")
)

// Callback abort reasons. A provider-supplied error value is passed through
// as its own reason.
const (
	ReasonMissingParams       = "missing_params"
	ReasonInvalidState        = "invalid_state"
	ReasonTokenNotFound       = "token_not_found"
	ReasonTokenExchangeFailed = "token_exchange_failed"
	ReasonUpdateFailed        = "update_failed"
)

// CallbackError aborts the OAuth callback with a reason for the redirect
type CallbackError struct {
	Reason string
	Err    error
}

func (e *CallbackError) Error() string {
	if e.Err != nil {
		return "xero callback aborted: " + e.Reason + ": " + e.Err.Error()
	}
	return "xero callback aborted: " + e.Reason
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
