package sqlorm

import (
	"context"
)

// Querier is implemented by builders whose terminal calls decode rows.
type Querier[T any] interface {
	Get(ctx context.Context) (*T, error)
	GetMulti(ctx context.Context) ([]*T, error)
}

// Executor is implemented by builders whose terminal calls only report an
// execution result.
type Executor interface {
	Exec(ctx context.Context) Result
}

// Query is a rendered statement: SQL text plus its positionally bound
// parameters.
type Query struct {
	SQL  string
	Args []any
}

type QueryBuilder interface {
	Build() (*Query, error)
}
