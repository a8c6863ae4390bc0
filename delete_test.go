package sqlorm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

func TestDeleter_Build(t *testing.T) {
	db := buildDB(t, SQLite3)
	type testCase struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}
	tests := []testCase{
		{
			name: "no where",
			q:    NewDeleter[TestModel](db),
			want: &Query{
				SQL: `DELETE FROM "test_model";`,
			},
		},
		{
			name: "with where",
			q:    NewDeleter[TestModel](db).Where(C("Id").EQ(16)),
			want: &Query{
				SQL:  `DELETE FROM "test_model" WHERE "id" = ?;`,
				Args: []any{16},
			},
		},
		{
			name: "from override",
			q:    NewDeleter[TestModel](db).From(`"other_table"`),
			want: &Query{
				SQL: `DELETE FROM "other_table";`,
			},
		},
		{
			name:    "empty in",
			q:       NewDeleter[TestModel](db).Where(C("Id").In()),
			wantErr: errs.ErrEmptyInList,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := tt.q.Build()
			assert.Equal(t, tt.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, query)
		})
	}
}

func TestDeleter_Exec(t *testing.T) {
	db, mock := mockDB(t, SQLite3)
	mock.ExpectExec(`DELETE FROM "test_model" WHERE "id" = ?;`).
		WithArgs(16).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := NewDeleter[TestModel](db).Where(C("Id").EQ(16)).Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
