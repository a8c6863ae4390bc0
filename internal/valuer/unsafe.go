package valuer

import (
	"database/sql"
	"reflect"
	"unsafe"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// unsafeValue decodes rows by writing straight into the struct's memory at
// the recorded field offsets.
type unsafeValue struct {
	// addr is an unsafe.Pointer rather than a uintptr so the pointee
	// stays visible to the garbage collector.
	addr unsafe.Pointer
	meta *model.Model
}

var _ Creator = NewUnsafeValue

func NewUnsafeValue(val any, meta *model.Model) Value {
	return unsafeValue{
		addr: unsafe.Pointer(reflect.ValueOf(val).Pointer()),
		meta: meta,
	}
}

func (u unsafeValue) SetColumns(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(columns) > len(u.meta.ColumnMap) {
		return errs.ErrTooManyReturnedColumns
	}

	colValues := make([]any, len(columns))
	for i, column := range columns {
		cm, ok := u.meta.ColumnMap[column]
		if !ok {
			return errs.NewErrUnknownColumn(column)
		}
		ptr := unsafe.Pointer(uintptr(u.addr) + cm.Offset)
		colValues[i] = reflect.NewAt(cm.Type, ptr).Interface()
	}

	return rows.Scan(colValues...)
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	ptr := unsafe.Pointer(uintptr(u.addr) + fd.Offset)
	return reflect.NewAt(fd.Type, ptr).Elem().Interface(), nil
}
