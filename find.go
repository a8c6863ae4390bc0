package sqlorm

import (
	"context"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

// FindByID fetches a single row by primary key. It is shorthand for a
// Selector filtered on the key column; ErrNoRows reports a missing row.
func FindByID[T any](ctx context.Context, sess Session, id any) (*T, error) {
	c := sess.getCore()
	m, err := c.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	return NewSelector[T](sess).Where(C(m.PK.GoName).EQ(id)).Get(ctx)
}

// FindBy fetches a single row by a uniquely constrained field. The field
// is named by its Go field name and must be the primary key or carry a
// unique constraint; anything else could silently drop rows, so it is
// rejected before any statement is built.
func FindBy[T any](ctx context.Context, sess Session, field string, val any) (*T, error) {
	c := sess.getCore()
	m, err := c.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	fd, ok := m.FieldMap[field]
	if !ok {
		return nil, errs.NewErrUnknownField(field)
	}
	if !fd.IsPK && !fd.IsUnique {
		return nil, errs.NewErrNonUniqueField(field)
	}
	return NewSelector[T](sess).Where(C(field).EQ(val)).Get(ctx)
}
