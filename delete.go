package sqlorm

import (
	"context"
)

type Deleter[T any] struct {
	builder
	core
	sess Session

	table string
	where []Predicate

	q *Query
}

func NewDeleter[T any](sess Session) *Deleter[T] {
	c := sess.getCore()
	return &Deleter[T]{
		builder: builder{
			d:      c.dialect,
			quoter: c.dialect.quoter(),
		},
		core: c,
		sess: sess,
	}
}

// From overrides the table fragment verbatim; the caller quotes it.
func (d *Deleter[T]) From(table string) *Deleter[T] {
	d.table = table
	return d
}

func (d *Deleter[T]) Where(ps ...Predicate) *Deleter[T] {
	d.where = append(d.where, ps...)
	return d
}

func (d *Deleter[T]) Build() (*Query, error) {
	if d.q != nil {
		return d.q, nil
	}

	var err error
	if d.model == nil {
		if d.model, err = d.r.Get(new(T)); err != nil {
			return nil, err
		}
	}

	d.sb.WriteString("DELETE FROM ")
	if d.table == "" {
		d.quote(d.model.TableName)
	} else {
		d.sb.WriteString(d.table)
	}

	if len(d.where) > 0 {
		d.sb.WriteString(" WHERE ")
		if err = d.buildPredicates(d.where); err != nil {
			return nil, err
		}
	}

	d.sb.WriteByte(';')
	d.q = &Query{
		SQL:  d.sb.String(),
		Args: d.args,
	}
	return d.q, nil
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	m, err := d.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	d.model = m
	res := d.run(ctx, &QueryContext{
		Type:    "DELETE",
		Builder: d,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, d.sess, d)
	})
	return resultOf(res)
}
