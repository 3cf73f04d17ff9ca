package integration

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// Remote (marketplace) errors
	ErrRemoteUnavailable = errors.New("integration: marketplace temporarily unavailable")
	ErrRemoteTimeout     = errors.New("integration: marketplace request timed out")
	ErrRemoteRateLimited = errors.New("integration: marketplace rate limited")
	ErrRemoteRejected    = errors.New("integration: marketplace rejected request")
	ErrRemoteAuthFailed  = errors.New("integration: marketplace authentication failed")

	// Conversion errors
	ErrConversionFailed = errors.New("integration: remote payload does not map to canonical shape")

	// Persistence errors
	ErrPersistenceFailed = errors.New("integration: local store write failed")
	ErrOrderNotFound     = errors.New("integration: local order not found")
	ErrProductNotFound   = errors.New("integration: local product not found")
	ErrLogEntryNotFound  = errors.New("integration: sync log entry not found")

	// Configuration errors
	ErrClientNotRegistered = errors.New("integration: no client registered for marketplace")
	ErrNotConfigured       = errors.New("integration: marketplace not configured")

	// Mapping errors
	ErrMappingNotFound       = errors.New("integration: mapping record not found")
	ErrMappingRelinked       = errors.New("integration: mapping already linked to a different local entity")
	ErrMappingInvalidKey     = errors.New("integration: mapping key is incomplete")
	ErrInvalidMarketplace    = errors.New("integration: invalid marketplace identifier")
	ErrOrderAlreadyImported  = errors.New("integration: order already imported")
	ErrWebhookPayloadInvalid = errors.New("integration: webhook payload is invalid")
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// ErrorClass groups failures by how the pipelines should react to them.
type ErrorClass string

const (
	// ErrorClassTransient marks timeouts and 5xx-style failures; eligible
	// for retry at the next pass.
	ErrorClassTransient ErrorClass = "transient"
	// ErrorClassPermanent marks validation-style rejections; not retried
	// automatically, surfaced to an operator.
	ErrorClassPermanent ErrorClass = "permanent"
	// ErrorClassConversion marks data that does not map to the canonical
	// shape; logged with the raw payload for diagnosis.
	ErrorClassConversion ErrorClass = "conversion"
	// ErrorClassPersistence marks local store write failures; retried at
	// the next scheduled run since no mapping was committed.
	ErrorClassPersistence ErrorClass = "persistence"
	// ErrorClassConfiguration marks missing credentials or registrations;
	// aborts the whole run for the affected marketplace.
	ErrorClassConfiguration ErrorClass = "configuration"
)

// Classify places an error into the taxonomy. Unrecognized errors are
// treated as transient so they stay retry-eligible.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrClientNotRegistered), errors.Is(err, ErrNotConfigured), errors.Is(err, ErrRemoteAuthFailed):
		return ErrorClassConfiguration
	case errors.Is(err, ErrRemoteRejected), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrProductNotFound):
		return ErrorClassPermanent
	case errors.Is(err, ErrConversionFailed), errors.Is(err, ErrMappingRelinked), errors.Is(err, ErrWebhookPayloadInvalid):
		return ErrorClassConversion
	case errors.Is(err, ErrPersistenceFailed):
		return ErrorClassPersistence
	default:
		return ErrorClassTransient
	}
}

// Retryable returns true if a later attempt with the same input could
// plausibly succeed without operator intervention.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrorClassTransient, ErrorClassPersistence:
		return true
	default:
		return false
	}
}

// IsRetryable is the error-level shorthand for Classify(err).Retryable().
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}
