package model

import "errors"

// Error taxonomy for the access-control and payment paths. Handlers map
// these to HTTP statuses with generic bodies; wrapped detail stays in logs.
var (
	// ErrInvalidToken covers malformed, expired and badly signed tokens
	// alike. Callers never learn which, to avoid acting as an oracle.
	ErrInvalidToken = errors.New("invalid token")

	// ErrIdentityRequired: the operation needs a durable identity and the
	// request resolved to a guest or to nobody.
	ErrIdentityRequired = errors.New("authenticated identity required")

	// ErrNotEntitled: valid identity, no matching completed purchase.
	ErrNotEntitled = errors.New("not entitled")

	// ErrNotFound: referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream: store/gateway/storage I/O failure. Retryable, and never
	// to be read as "not purchased".
	ErrUpstream = errors.New("upstream unavailable")

	// ErrAmountMismatch: the gateway committed a different amount than the
	// server computed. Always fatal to the attempt, never corrected.
	ErrAmountMismatch = errors.New("committed amount does not match order total")

	// ErrDuplicateCallback: the gateway re-delivered a callback that was
	// already reconciled. Absorbed, not surfaced to the provider.
	ErrDuplicateCallback = errors.New("callback already processed")

	// ErrPaymentRejected: clean decline from the gateway. Distinct from
	// ErrUpstream for observability.
	ErrPaymentRejected = errors.New("payment rejected")
)
