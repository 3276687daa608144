package billing

import "errors"

var (
	// ErrVerification means the webhook signature was missing or invalid.
	ErrVerification = errors.New("billing: webhook verification failed")
	// ErrMalformedPayload means a verified event could not be decoded.
	ErrMalformedPayload = errors.New("billing: malformed event payload")
	// ErrStoreUnavailable wraps store failures; callers should retry.
	ErrStoreUnavailable = errors.New("billing: store unavailable")
	// ErrProviderUnavailable wraps billing provider failures; callers should retry.
	ErrProviderUnavailable = errors.New("billing: provider unavailable")
	ErrCustomerNotFound    = errors.New("billing: customer not found")
	ErrMissingIdentifier   = errors.New("billing: missing user or contact identifier")
	ErrUnknownPlan         = errors.New("billing: no price configured for plan")
)
