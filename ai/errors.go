package ai

import "errors"

var (
	// ErrMissingCredential indicates no API credential was configured.
	// Configuration errors are fatal: fail fast, no retry.
	ErrMissingCredential = errors.New("ai: missing embedding API credential")

	// ErrMissingHost indicates no embedding service host was configured.
	ErrMissingHost = errors.New("ai: missing embedding host")

	// ErrMissingModel indicates no embedding model was configured.
	ErrMissingModel = errors.New("ai: missing embedding model")

	// ErrProvider wraps a non-success response from the remote embedding
	// service; the wrapped message carries the raw provider error for
	// diagnostics.
	ErrProvider = errors.New("ai: embedding provider error")

	// ErrInvalidMaxAttempts is returned by RetryWithBackoff when
	// maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("ai: maxAttempts must be > 0")
)
