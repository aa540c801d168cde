package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	// ErrInvalid marks user input that fails a precondition (validation_error).
	ErrInvalid = errors.New("invalid")
	// ErrInvalidConfiguration marks missing or out-of-range closing/due days.
	ErrInvalidConfiguration = errors.New("invalid_configuration")
	// ErrConfigurationMissing is returned when a required system category cannot be resolved.
	ErrConfigurationMissing = errors.New("configuration_missing")
	// ErrPairedLeg indicates an attempt to change one leg of a transfer or invoice payment on its own.
	ErrPairedLeg = errors.New("paired_leg")
	// ErrPartialPosting means a paired posting failed mid-way and left orphaned rows behind.
	ErrPartialPosting = errors.New("partial_posting")
)
