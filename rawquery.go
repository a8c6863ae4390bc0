package sqlorm

import (
	"context"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

// RawQuerier runs caller-written SQL and decodes into T. The ORM binds the
// parameters but touches nothing else.
type RawQuerier[T any] struct {
	core
	sess Session
	sql  string
	args []any
}

func RawQuery[T any](sess Session, query string, args ...any) *RawQuerier[T] {
	return &RawQuerier[T]{
		core: sess.getCore(),
		sess: sess,
		sql:  query,
		args: args,
	}
}

func (r *RawQuerier[T]) Build() (*Query, error) {
	return &Query{
		SQL:  r.sql,
		Args: r.args,
	}, nil
}

func (r *RawQuerier[T]) Exec(ctx context.Context) Result {
	m, err := r.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	res := r.run(ctx, &QueryContext{
		Type:    "RAW",
		Builder: r,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, r.sess, r)
	})
	return resultOf(res)
}

func (r *RawQuerier[T]) Get(ctx context.Context) (*T, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	res := r.run(ctx, &QueryContext{
		Type:    "RAW",
		Builder: r,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		rows, err := r.sess.queryContext(ctx, r.sql, r.args...)
		if err != nil {
			return &QueryResult{Err: errs.NewErrFailedStatement(r.sql, err)}
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return &QueryResult{Err: err}
			}
			return &QueryResult{Err: errs.ErrNoRows}
		}
		tp := new(T)
		if err := r.valCreator(tp, m).SetColumns(rows); err != nil {
			return &QueryResult{Err: err}
		}
		markPersisted(tp)
		return &QueryResult{Result: tp}
	})
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Result.(*T), nil
}

func (r *RawQuerier[T]) GetMulti(ctx context.Context) ([]*T, error) {
	m, err := r.r.Get(new(T))
	if err != nil {
		return nil, err
	}
	res := r.run(ctx, &QueryContext{
		Type:    "RAW",
		Builder: r,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		rows, err := r.sess.queryContext(ctx, r.sql, r.args...)
		if err != nil {
			return &QueryResult{Err: errs.NewErrFailedStatement(r.sql, err)}
		}
		defer rows.Close()
		var tps []*T
		for rows.Next() {
			tp := new(T)
			if err := r.valCreator(tp, m).SetColumns(rows); err != nil {
				return &QueryResult{Err: err}
			}
			markPersisted(tp)
			tps = append(tps, tp)
		}
		if err := rows.Err(); err != nil {
			return &QueryResult{Err: err}
		}
		return &QueryResult{Result: tps}
	})
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Result.([]*T), nil
}
