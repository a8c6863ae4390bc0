package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOnly entities must be registered as a pointer to a struct,
	// e.g. Register(&User{}).
	ErrPointerOnly = errors.New("orm: only pointer to struct is supported")

	// ErrNoRows a single-result fetch matched no row.
	// This is an absent-value outcome, not a statement failure.
	ErrNoRows = errors.New("orm: no rows matched")

	ErrInsertZeroRow    = errors.New("orm: no rows to insert")
	ErrNoUpdatedColumns = errors.New("orm: no columns to update")
	ErrSaveNilEntity    = errors.New("orm: nil entity passed to Save")
	ErrDeleteNilEntity  = errors.New("orm: nil entity passed to Delete")

	// ErrEmptyInList an IN/NOT IN predicate received zero operands.
	// An empty IN () is never valid SQL, so it fails before execution.
	ErrEmptyInList = errors.New("orm: IN predicate requires at least one value")

	// ErrNoDialect a DB was opened without selecting a dialect.
	ErrNoDialect = errors.New("orm: no dialect selected")

	// ErrBuilderConsumed a terminal fetch was invoked on a builder that
	// already executed. Builders are single-use.
	ErrBuilderConsumed = errors.New("orm: query builder already consumed")

	ErrTooManyReturnedColumns = errors.New("orm: too many returned columns")

	// ErrSelectWithEager narrowing the projection would starve the eager
	// decode of the joined columns it scans positionally.
	ErrSelectWithEager = errors.New("orm: Select cannot be combined with eager relation loading")
)

func NewErrUnsupportedExpressionType(exp any) error {
	return fmt.Errorf("orm: unsupported expression type %v", exp)
}

func NewErrUnsupportedSelectable(exp any) error {
	return fmt.Errorf("orm: unsupported selectable %v", exp)
}

func NewErrUnsupportedAssignableType(exp any) error {
	return fmt.Errorf("orm: unsupported assignable type %v", exp)
}

func NewErrUnknownField(name string) error {
	return fmt.Errorf("orm: unknown field %s", name)
}

func NewErrUnknownColumn(name string) error {
	return fmt.Errorf("orm: unknown column %s", name)
}

func NewErrUnknownRelation(name string) error {
	return fmt.Errorf("orm: unknown relation %s", name)
}

func NewErrUnknownDriver(name string) error {
	return fmt.Errorf("orm: unknown driver %s, use pgx or sqlite3", name)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("orm: invalid tag content %s", pair)
}

func NewErrInvalidRelationField(field string) error {
	return fmt.Errorf("orm: relation field %s must be of type Rel[T] or RelMany[T]", field)
}

func NewErrInvalidRelationOn(content string) error {
	return fmt.Errorf("orm: invalid relation join columns %q, expected on=Local:Foreign", content)
}

func NewErrMissingPrimaryKey(table string) error {
	return fmt.Errorf("orm: table %s declares no primary key", table)
}

func NewErrMultiplePrimaryKeys(table string) error {
	return fmt.Errorf("orm: table %s declares more than one primary key", table)
}

func NewErrInvalidTimestampField(field string) error {
	return fmt.Errorf("orm: timestamp field %s must be of type time.Time", field)
}

func NewErrNonUniqueField(name string) error {
	return fmt.Errorf("orm: field %s is neither the primary key nor unique", name)
}

// NewErrFailedStatement wraps a driver failure with the statement that
// produced it. The underlying error is preserved for errors.Is/As.
func NewErrFailedStatement(sql string, err error) error {
	return fmt.Errorf("orm: statement %q failed: %w", sql, err)
}

func NewErrDecodeColumnCount(expected, actual int) error {
	return fmt.Errorf("orm: projection mismatch, expected %d columns, got %d", expected, actual)
}
