package gallery

import "errors"

var (
	// ErrInvalidConfiguration is returned when a layout or hover parameter is
	// outside its valid range. No items are produced when it is returned.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingContent marks a pool entry that could not be resolved to a
	// loadable resource. The affected cells are left unpopulated.
	ErrMissingContent = errors.New("missing content")
)
