package sqlorm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

func TestUpdater_Build(t *testing.T) {
	db := buildDB(t, SQLite3)
	type testCase struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}
	tests := []testCase{
		{
			name:    "no columns",
			q:       NewUpdater[TestModel](db),
			wantErr: errs.ErrNoUpdatedColumns,
		},
		{
			name: "assignment",
			q: NewUpdater[TestModel](db).
				Set(Assign("Age", 19)).
				Where(C("Id").EQ(1)),
			want: &Query{
				SQL:  `UPDATE "test_model" SET "age"=? WHERE "id" = ?;`,
				Args: []any{19, 1},
			},
		},
		{
			name: "column reads entity value",
			q: NewUpdater[TestModel](db).
				Update(&TestModel{Age: 18, FirstName: "Tom"}).
				Set(C("FirstName"), C("Age")),
			want: &Query{
				SQL:  `UPDATE "test_model" SET "first_name"=?,"age"=?;`,
				Args: []any{"Tom", int8(18)},
			},
		},
		{
			name: "math expression",
			q: NewUpdater[TestModel](db).
				Set(Assign("Age", C("Age").Add(1))).
				Where(C("Id").EQ(1)),
			want: &Query{
				SQL:  `UPDATE "test_model" SET "age"="age"+? WHERE "id" = ?;`,
				Args: []any{1, 1},
			},
		},
		{
			name: "unknown assigned field",
			q: NewUpdater[TestModel](db).
				Set(Assign("Invalid", 19)),
			wantErr: errs.NewErrUnknownField("Invalid"),
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

func TestUpdater_Exec(t *testing.T) {
	db, mock := mockDB(t, SQLite3)
	mock.ExpectExec(`UPDATE "test_model" SET "age"=? WHERE "id" = ?;`).
		WithArgs(19, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := NewUpdater[TestModel](db).
		Set(Assign("Age", 19)).
		Where(C("Id").EQ(1)).
		Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
