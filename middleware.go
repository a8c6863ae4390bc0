package sqlorm

import (
	"context"

	"github.com/levlavryniuk/sqlorm/model"
)

// QueryContext is handed to middlewares before the statement executes. It
// carries the builder and the model so interceptors can render or inspect
// the statement without executing it themselves.
type QueryContext struct {
	// Type is the statement kind: SELECT, INSERT, UPDATE, DELETE or RAW.
	// Save reports the branch it took, INSERT or UPDATE; an entity delete
	// reports DELETE even when it soft-deletes via an UPDATE.
	Type string

	// Builder renders the pending statement. Most middlewares only need
	// Build; mutating requires a type assertion to the concrete builder.
	Builder QueryBuilder

	Model *model.Model
}

// QueryResult carries the outcome through the middleware chain. Result is
// a *T for Get, a []*T for GetMulti and a Result for Exec.
type QueryResult struct {
	Result any
	Err    error
}

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult

type Middleware func(next Handler) Handler
