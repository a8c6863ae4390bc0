package querylog

import (
	"context"
	"log"

	"github.com/levlavryniuk/sqlorm"
)

// MiddlewareBuilder logs every statement and its arguments before it is
// sent to the driver.
type MiddlewareBuilder struct {
	logFunc func(sql string, args []any)
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

// LogFunc replaces the default standard-library logger.
func (m *MiddlewareBuilder) LogFunc(fn func(sql string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() sqlorm.Middleware {
	if m.logFunc == nil {
		m.logFunc = func(sql string, args []any) {
			log.Printf("sql: %s, args: %v", sql, args)
		}
	}
	return func(next sqlorm.Handler) sqlorm.Handler {
		return func(ctx context.Context, qc *sqlorm.QueryContext) *sqlorm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				return &sqlorm.QueryResult{Err: err}
			}
			m.logFunc(q.SQL, q.Args)
			return next(ctx, qc)
		}
	}
}
