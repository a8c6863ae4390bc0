package sqlorm

import "github.com/levlavryniuk/sqlorm/internal/errs"

// Sentinel errors re-exported from the internal package.
var (
	// ErrNoRows reports that a single-result fetch matched nothing.
	ErrNoRows = errs.ErrNoRows

	// ErrEmptyInList reports an IN predicate built with zero operands.
	ErrEmptyInList = errs.ErrEmptyInList

	// ErrNoDialect reports a DB opened without a dialect selection.
	ErrNoDialect = errs.ErrNoDialect
)
