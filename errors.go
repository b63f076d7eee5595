package submatch

import (
	"context"
	"errors"
)

// Error kinds returned by every public operation in this package. Callers
// match with errors.Is; wrapped errors keep the original cause via %w.
var (
	// ErrInvalidArgument is returned for schema, range, and arity violations:
	// a negative hop radius, an alpha outside [0,1], a malformed pagination
	// window, an unknown Frame column name, a column-length mismatch on
	// write.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation is returned when the Frame detects inconsistent
	// column lengths. This is never expected in normal operation and is
	// always fatal to the current search.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrCancelled is returned when a search observes a cancelled or
	// expired context between iterations or branch-and-bound expansions.
	ErrCancelled = errors.New("cancelled")

	// ErrNoSuchGraph is returned unchanged from the store boundary: a
	// GraphProvider or CandidateProvider reported that a graph id does not
	// exist.
	ErrNoSuchGraph = errors.New("no such graph")
)

// checkContext maps a context's cancellation into ErrCancelled, the one
// cancellation-related error kind this package exposes.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrCancelled
	}
	return nil
}
