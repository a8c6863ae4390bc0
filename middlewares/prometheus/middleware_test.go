package prometheus

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levlavryniuk/sqlorm"
	"github.com/levlavryniuk/sqlorm/internal/errs"
)

type Order struct {
	Id    int64 `orm:"pk"`
	Total int64
}

func TestMiddlewareBuilder_NoModel(t *testing.T) {
	builder := MiddlewareBuilder{
		Namespace: "test",
		Subsystem: "orm",
		Name:      "statement_duration_ms",
		Help:      "statement latency",
	}
	db, err := sqlorm.Open("sqlite3",
		"file:prom_test.db?cache=shared&mode=memory",
		sqlorm.DBWithMiddlewares(builder.Build()))
	require.NoError(t, err)

	// A zero-row insert fails before any model is resolved; the latency is
	// still observed under an empty table label.
	res := sqlorm.NewInserter[Order](db).Exec(context.Background())
	assert.Equal(t, errs.ErrInsertZeroRow, res.Err())
}
