package xero

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected means the user has no usable token pair
	ErrNotConnected = errors.New("xero is not connected")

	// ErrRefreshFailed means the refresh grant was rejected; the user must reconnect
	ErrRefreshFailed = errors.New("xero token refresh failed")

	// ErrTenantNotSelected means no organisation is bound to the token
	ErrTenantNotSelected = errors.New("xero organisation not selected")

	// ErrInvalidResponse means a provider payload failed schema validation
	ErrInvalidResponse = errors.New("invalid xero response")
)

// maxErrorDetail bounds the raw body fallback carried in RemoteAPIError
const maxErrorDetail = 200

// RemoteAPIError is a non-2xx reply from the Xero API
type RemoteAPIError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("xero api error (status %d): %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 RemoteAPIError
func IsNotFound(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
