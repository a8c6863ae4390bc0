package sqlorm

import (
	"context"
	"reflect"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// Inserter builds a multi-row INSERT. It is the low-level surface: it
// writes exactly the columns asked for and decides nothing about
// timestamps or key generation; that is Saver's job.
type Inserter[T any] struct {
	builder
	core
	sess Session

	values  []*T
	columns []string
	upsert  *Upsert

	q *Query
}

func NewInserter[T any](sess Session) *Inserter[T] {
	c := sess.getCore()
	return &Inserter[T]{
		builder: builder{
			d:      c.dialect,
			quoter: c.dialect.quoter(),
		},
		core: c,
		sess: sess,
	}
}

func (i *Inserter[T]) Values(vals ...*T) *Inserter[T] {
	i.values = vals
	return i
}

// Columns restricts the insert to a subset of fields, by Go field name.
func (i *Inserter[T]) Columns(cols ...string) *Inserter[T] {
	i.columns = cols
	return i
}

// Upsert is the conflict clause of an INSERT: both dialects render
// ON CONFLICT (cols) DO UPDATE SET.
type Upsert struct {
	conflictColumns []string
	assigns         []Assignable
}

type UpsertBuilder[T any] struct {
	i               *Inserter[T]
	conflictColumns []string
}

// OnConflict starts an upsert clause keyed on the given columns.
func (i *Inserter[T]) OnConflict(cols ...string) *UpsertBuilder[T] {
	return &UpsertBuilder[T]{
		i:               i,
		conflictColumns: cols,
	}
}

// Update finishes the upsert clause. Column assignables re-use the
// excluded row's value; Assignments set an explicit one.
func (u *UpsertBuilder[T]) Update(assigns ...Assignable) *Inserter[T] {
	u.i.upsert = &Upsert{
		conflictColumns: u.conflictColumns,
		assigns:         assigns,
	}
	return u.i
}

func (i *Inserter[T]) Build() (*Query, error) {
	if i.q != nil {
		return i.q, nil
	}
	if len(i.values) == 0 {
		return nil, errs.ErrInsertZeroRow
	}

	m, err := i.r.Get(i.values[0])
	if err != nil {
		return nil, err
	}
	i.model = m

	i.sb.WriteString("INSERT INTO ")
	i.quote(m.TableName)
	i.sb.WriteString(" (")

	fields := m.Fields
	if len(i.columns) != 0 {
		fields = make([]*model.Field, 0, len(i.columns))
		for _, c := range i.columns {
			field, ok := m.FieldMap[c]
			if !ok {
				return nil, errs.NewErrUnknownField(c)
			}
			fields = append(fields, field)
		}
	}

	for idx, fd := range fields {
		if idx > 0 {
			i.sb.WriteByte(',')
		}
		i.quote(fd.ColName)
	}

	i.sb.WriteString(") VALUES ")
	for vIdx, val := range i.values {
		if vIdx > 0 {
			i.sb.WriteByte(',')
		}
		refVal := reflect.ValueOf(val).Elem()
		i.sb.WriteByte('(')
		for fIdx, fd := range fields {
			if fIdx > 0 {
				i.sb.WriteByte(',')
			}
			i.bindArg(refVal.Field(fd.Index).Interface())
		}
		i.sb.WriteByte(')')
	}

	if i.upsert != nil {
		if err = i.dialect.buildUpsert(&i.builder, i.upsert); err != nil {
			return nil, err
		}
	}

	i.sb.WriteByte(';')
	i.q = &Query{
		SQL:  i.sb.String(),
		Args: i.args,
	}
	return i.q, nil
}

func (i *Inserter[T]) Exec(ctx context.Context) Result {
	var m *model.Model
	if len(i.values) > 0 {
		var err error
		if m, err = i.r.Get(i.values[0]); err != nil {
			return Result{err: err}
		}
	}
	res := i.run(ctx, &QueryContext{
		Type:    "INSERT",
		Builder: i,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, i.sess, i)
	})
	return resultOf(res)
}
