package explorer

import "errors"

// Error definitions for the explorer view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrInvalidRadius indicates the radius field does not hold a positive number.
	ErrInvalidRadius = errors.New("radius must be a positive number of miles")
)
