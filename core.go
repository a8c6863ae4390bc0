package sqlorm

import (
	"context"
	"database/sql"
	"time"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/internal/valuer"
	"github.com/levlavryniuk/sqlorm/model"
)

// core bundles the collaborators every statement builder needs: the active
// dialect, the metadata registry, the row decoder factory, the middleware
// chain and the clock used for timestamp stamping.
type core struct {
	dialect    Dialect
	r          model.Registry
	valCreator valuer.Creator
	mdls       []Middleware
	clock      func() time.Time
}

// run invokes the terminal handler through the middleware chain.
func (c core) run(ctx context.Context, qc *QueryContext, h Handler) *QueryResult {
	for i := len(c.mdls) - 1; i >= 0; i-- {
		h = c.mdls[i](h)
	}
	return h(ctx, qc)
}

// execHandler is the terminal handler shared by the Exec-style builders.
func execHandler(ctx context.Context, sess Session, qb QueryBuilder) *QueryResult {
	q, err := qb.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}
	res, err := sess.execContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: errs.NewErrFailedStatement(q.SQL, err)}
	}
	return &QueryResult{Result: res}
}

func resultOf(res *QueryResult) Result {
	var sqlRes sql.Result
	if res.Result != nil {
		sqlRes, _ = res.Result.(sql.Result)
	}
	return Result{
		err: res.Err,
		res: sqlRes,
	}
}
