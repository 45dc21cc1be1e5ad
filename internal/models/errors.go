package models

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a resource with the same unique key already exists.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned when a login attempt does not match any account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidItem is returned when a cart item has no id, a negative price or a
	// variant that does not match its payload.
	ErrInvalidItem = errors.New("invalid cart item")

	// ErrZeroQuantityDelta is returned when a cart mutation would change nothing.
	ErrZeroQuantityDelta = errors.New("quantity delta must be non-zero")

	// ErrCartEmpty is returned when checkout is started without any items.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrInvalidTransition is returned when a checkout action is not allowed in the
	// session's current step.
	ErrInvalidTransition = errors.New("action not allowed in the current checkout step")

	// ErrSubmissionInProgress is returned when a second confirmation is requested while
	// the first one is still running.
	ErrSubmissionInProgress = errors.New("order submission already in progress")

	// ErrSubmissionFailed wraps every failure of the order submission call.
	ErrSubmissionFailed = errors.New("order submission failed")

	// ErrLocationUnavailable is returned by geolocation providers that could not
	// produce coordinates.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrOrderCannotBeCancelled is returned when an order is past the placed status.
	ErrOrderCannotBeCancelled = errors.New("order can no longer be cancelled")

	// ErrVendorUnavailable is returned when the catalog cannot supply a vendor record.
	ErrVendorUnavailable = errors.New("vendor unavailable")
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ValidationError carries field-level reasons for a rejected form. It never
// changes session state.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// NewValidationError returns nil when there are no reasons.
func NewValidationError(reasons []string) error {
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}
