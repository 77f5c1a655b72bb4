package release

import "github.com/cockroachdb/errors"

var (
	// ErrInconsistentRelease is returned when inputs disagree on release, stream or commit.
	ErrInconsistentRelease = errors.New("input files do not appear to be for the same release")
	// ErrMediaConflict is returned when an architecture already records a different media entry.
	ErrMediaConflict = errors.New("differing media type detected")
	// ErrMissingField is returned when a metadata document lacks a required field.
	ErrMissingField = errors.New("missing required field")
)

// EnsureSame sets *dst to src when *dst is unset and fails when both are set and differ.
// The field name ends up in the error message.
func EnsureSame[T comparable](field string, dst *T, src T) error {
	var zero T

	if *dst == zero {
		*dst = src

		return nil
	}

	if *dst != src {
		err := errors.Wrapf(ErrInconsistentRelease, "%s mismatch", field)

		return errors.WithDetailf(err, "recorded %v, input has %v", *dst, src)
	}

	return nil
}
