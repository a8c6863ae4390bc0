package valuer

import (
	"database/sql"
	"fmt"
	"reflect"
)

// ConvertAssign sets dst from a driver-provided value. It exists for the
// eager-join decode path, where related columns are scanned into any so a
// NULL row half (missing LEFT JOIN match) does not abort the scan.
func ConvertAssign(dst reflect.Value, src any) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type() == dst.Type() {
		dst.Set(sv)
		return nil
	}

	if dst.CanAddr() {
		if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(src)
		}
	}

	// SQLite hands booleans back as integers.
	if dst.Kind() == reflect.Bool {
		switch v := src.(type) {
		case int64:
			dst.SetBool(v != 0)
			return nil
		case bool:
			dst.SetBool(v)
			return nil
		}
	}

	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}

	return fmt.Errorf("orm: cannot decode %T into %s", src, dst.Type())
}
