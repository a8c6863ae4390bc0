package valuer

import (
	"database/sql"
	"reflect"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// reflectValue decodes rows through the reflect package. Slower than the
// unsafe variant but easy to follow; kept as the reference implementation.
type reflectValue struct {
	val  reflect.Value
	meta *model.Model
}

var _ Creator = NewReflectValue

// NewReflectValue wraps a pointer to a struct instance.
func NewReflectValue(val any, meta *model.Model) Value {
	return reflectValue{
		val:  reflect.ValueOf(val).Elem(),
		meta: meta,
	}
}

func (r reflectValue) SetColumns(rows *sql.Rows) error {
	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(columnNames) > len(r.meta.ColumnMap) {
		return errs.ErrTooManyReturnedColumns
	}

	// colValues feeds Scan as []any while colEleValues keeps the
	// dereferenced reflect.Values; both point at the same memory.
	colValues := make([]any, len(columnNames))
	colEleValues := make([]reflect.Value, len(columnNames))
	for i, name := range columnNames {
		field, ok := r.meta.ColumnMap[name]
		if !ok {
			return errs.NewErrUnknownColumn(name)
		}
		val := reflect.New(field.Type)
		colValues[i] = val.Interface()
		colEleValues[i] = val.Elem()
	}

	if err = rows.Scan(colValues...); err != nil {
		return err
	}

	for i, c := range columnNames {
		cm := r.meta.ColumnMap[c]
		r.val.FieldByName(cm.GoName).Set(colEleValues[i])
	}
	return nil
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}
