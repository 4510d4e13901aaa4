package ratelimit

import "errors"

var (
	ErrNotConfigured  = errors.New("rate_limiter_not_configured")
	ErrEmptyKey       = errors.New("rate_limiter_key_empty")
	ErrInvalidLimit   = errors.New("rate_limiter_limit_invalid")
	ErrDocumentLocked = errors.New("document_locked")
	ErrRateLimited    = errors.New("rate_limited")
)
