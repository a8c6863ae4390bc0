package sqlorm

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

type TestModel struct {
	Id        int64 `orm:"pk"`
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

type User struct {
	Id        int64  `orm:"pk"`
	Email     string `orm:"unique"`
	Active    bool
	Age       int8
	CreatedAt time.Time `orm:"created_at"`
	UpdatedAt time.Time `orm:"updated_at"`

	Posts RelMany[Post] `orm:"relation=has_many,name=posts,on=Id:UserId"`
}

type Post struct {
	Id     int64 `orm:"pk"`
	UserId int64
	Title  string

	Author Rel[User] `orm:"relation=belongs_to,name=author,on=UserId:Id"`
}

// memoryDB opens a shared in-memory SQLite handle.
func memoryDB(t *testing.T, opts ...DBOption) *DB {
	t.Helper()
	db, err := Open("sqlite3", "file:test.db?cache=shared&mode=memory", opts...)
	require.NoError(t, err)
	return db
}

// buildDB wraps a nil handle for Build-only tests; nothing is executed.
func buildDB(t *testing.T, d Dialect) *DB {
	t.Helper()
	db, err := OpenDB(nil, DBWithDialect(d))
	require.NoError(t, err)
	return db
}

// mockDB pairs a DB with a sqlmock expecting literal SQL.
func mockDB(t *testing.T, d Dialect, opts ...DBOption) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mockDb.Close()
	})
	db, err := OpenDB(mockDb, append([]DBOption{DBWithDialect(d)}, opts...)...)
	require.NoError(t, err)
	return db, mock
}
