package services

import "errors"

// Failure categories surfaced by the services. Callers match with errors.Is;
// the wrapped message carries the operation detail.
var (
	// ErrInvalidPayload marks a scanned QR text that cannot be parsed into
	// ticket parameters. Not retryable.
	ErrInvalidPayload = errors.New("invalid ticket payload")

	// ErrNetwork marks a transport failure reaching the fiscal operator.
	// Retryable by the caller; no service retries internally.
	ErrNetwork = errors.New("fiscal operator unreachable")

	// ErrMalformedResponse marks an operator response that cannot be decoded
	// into the expected ticket shape, including operator-side rejections.
	ErrMalformedResponse = errors.New("malformed fiscal operator response")

	// ErrInvalidTimestamp marks an operator transaction date outside the
	// fixed YYYY-MM-DDTHH:MM:SS format.
	ErrInvalidTimestamp = errors.New("invalid transaction timestamp")

	// ErrPersistence marks a storage operation failure.
	ErrPersistence = errors.New("persistence failure")
)
