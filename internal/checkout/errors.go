package checkout

import "errors"

var (
	// ErrInvalidTransition is returned when an intent is not allowed in the current stage or page.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrMethodUnavailable is returned when selecting a hidden or disabled payment method.
	ErrMethodUnavailable = errors.New("payment method unavailable")
	// ErrNotSubmittable is returned when the amount due cannot be covered by the selected method.
	ErrNotSubmittable = errors.New("checkout cannot be submitted")
	// ErrCloseBlocked is returned when dismissing a checkout with a submission in flight.
	ErrCloseBlocked = errors.New("checkout cannot be closed while unlocking")
	// ErrSessionClosed is returned for any intent after cleanup.
	ErrSessionClosed = errors.New("checkout session closed")
	// ErrInvalidExtraAmount is returned for unknown presets or out of range custom amounts.
	ErrInvalidExtraAmount = errors.New("invalid extra amount")
	// ErrInvalidVendor is returned for unknown vendor preferences.
	ErrInvalidVendor = errors.New("invalid vendor")
)
