package opentelemetry

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/levlavryniuk/sqlorm"
)

type TestModel struct {
	Id        int64 `orm:"pk"`
	FirstName string
}

func TestMiddlewareBuilder_Build(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	m := &MiddlewareBuilder{
		Tracer: provider.Tracer(instrumentationName),
	}

	db, err := sqlorm.Open("sqlite3",
		"file:otel.db?cache=shared&mode=memory",
		sqlorm.DBWithMiddlewares(m.Build()))
	require.NoError(t, err)

	_, _ = sqlorm.NewSelector[TestModel](db).
		Where(sqlorm.C("Id").EQ(1)).
		Get(context.Background())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "SELECT", span.Name())
	assert.Contains(t, span.Attributes(),
		attribute.String("table", "test_model"))
	assert.Contains(t, span.Attributes(),
		attribute.String("sql", `SELECT * FROM "test_model" WHERE "id" = ?;`))
}
