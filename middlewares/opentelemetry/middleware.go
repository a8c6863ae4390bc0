package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/levlavryniuk/sqlorm"
)

const instrumentationName = "github.com/levlavryniuk/sqlorm/middlewares/opentelemetry"

// MiddlewareBuilder opens one span per statement, named after the
// statement type and carrying the table and SQL text as attributes.
type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m *MiddlewareBuilder) Build() sqlorm.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next sqlorm.Handler) sqlorm.Handler {
		return func(ctx context.Context, qc *sqlorm.QueryContext) *sqlorm.QueryResult {
			spanCtx, span := m.Tracer.Start(ctx, qc.Type)
			defer span.End()

			span.SetAttributes(attribute.String("component", "sqlorm"))
			if qc.Model != nil {
				span.SetAttributes(attribute.String("table", qc.Model.TableName))
			}
			if q, err := qc.Builder.Build(); err == nil {
				span.SetAttributes(attribute.String("sql", q.SQL))
			}

			res := next(spanCtx, qc)
			if res.Err != nil {
				span.RecordError(res.Err)
			}
			return res
		}
	}
}
