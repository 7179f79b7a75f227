package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: Package-level sentinel errors rather than fmt.Errorf
// instances so callers can use errors.Is while the messages stay
// human-readable. None of these need dynamic values.
var (
	// ErrInvalidBaseURL is returned when the base URL is missing a scheme
	// or host.
	ErrInvalidBaseURL = errors.New("invalid base URL: must include scheme and host")

	// ErrNoCollection is returned when the collection path is empty.
	ErrNoCollection = errors.New("no collection specified")

	// ErrInvalidDelayWindow is returned when the politeness window is
	// negative or inverted. The delay is mandatory; use equal min and max
	// for a fixed delay.
	ErrInvalidDelayWindow = errors.New("invalid delay window: min must be >= 0 and max >= min")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidFailureThreshold is returned when the dataset discovery
	// threshold is not positive.
	ErrInvalidFailureThreshold = errors.New("invalid failure threshold: must be positive")

	// ErrInvalidEmptyPageThreshold is returned when the page walk
	// threshold is not positive.
	ErrInvalidEmptyPageThreshold = errors.New("invalid empty page threshold: must be positive")

	// ErrInvalidMaxPages is returned when the page ceiling is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMinFileSize is returned when the size floor is negative.
	ErrInvalidMinFileSize = errors.New("invalid min file size: must be non-negative")
)
