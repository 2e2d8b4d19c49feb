package census

import "errors"

// Builder errors are raised immediately at the call that violates an
// invariant, never deferred to serialisation. Wrap-and-compare with
// errors.Is.
var (
	// ErrInvalidModifier is returned when serialising a search
	// modifier outside the defined range.
	ErrInvalidModifier = errors.New("invalid search modifier")

	// ErrInvalidLimit is returned by Query.SetLimit and
	// Query.SetLimitPerDB for limits smaller than 1.
	ErrInvalidLimit = errors.New("limit must be greater than or equal to 1")

	// ErrInvalidOffset is returned by Query.SetStart for negative
	// offsets.
	ErrInvalidOffset = errors.New("start may not be negative")

	// ErrInvalidSortKey is returned by ParseSortKey for malformed
	// sort specifiers.
	ErrInvalidSortKey = errors.New("invalid sort key")

	// ErrInvalidTreeStart is returned by Query.AsTree when the tree
	// start value is not a non-negative integer.
	ErrInvalidTreeStart = errors.New("tree start must be a non-negative integer")

	// ErrInvalidLocale is returned by Query.SetLocale for locale
	// identifiers that are not well-formed language tags.
	ErrInvalidLocale = errors.New("invalid locale identifier")

	// ErrMissingCollection is returned when converting a query
	// without a collection into a joined query.
	ErrMissingCollection = errors.New("joined query requires a collection")
)
