package valuer

import (
	"database/sql"

	"github.com/levlavryniuk/sqlorm/model"
)

// Value adapts one entity instance for column-level access: decoding a
// result row into it and reading single fields out of it.
type Value interface {
	// SetColumns decodes the current row into the wrapped instance.
	SetColumns(rows *sql.Rows) error
	// Field returns the value of the field with the given Go name.
	Field(name string) (any, error)
}

// Creator builds a Value over an instance and its metadata. Two
// implementations exist, reflection-based and unsafe-based; the DB selects
// one at open time.
type Creator func(val any, meta *model.Model) Value
