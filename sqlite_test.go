package sqlorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

func TestSQLiteRoundTrip(t *testing.T) {
	db := memoryDB(t)
	defer db.Close()
	ctx := context.Background()

	res := RawQuery[User](db, `CREATE TABLE "user" (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE,
		active INTEGER,
		age INTEGER,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);`).Exec(ctx)
	require.NoError(t, res.Err())
	res = RawQuery[Post](db, `CREATE TABLE "post" (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		title TEXT
	);`).Exec(ctx)
	require.NoError(t, res.Err())

	// Insert through Save: the key is assigned, both timestamps stamped.
	saved, err := NewSaver[User](db).Save(ctx, &User{
		Email:  "tom@example.com",
		Active: true,
		Age:    18,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.Id)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	// Save a fetched instance: update in place, created_at untouched.
	saved.Age = 19
	updated, err := NewSaver[User](db).Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.Id, updated.Id)
	assert.Equal(t, int8(19), updated.Age)
	assert.True(t, updated.CreatedAt.Equal(saved.CreatedAt))

	// Finder wrappers agree with the raw selector.
	byID, err := FindByID[User](ctx, db, saved.Id)
	require.NoError(t, err)
	byEmail, err := FindBy[User](ctx, db, "Email", "tom@example.com")
	require.NoError(t, err)
	assert.Equal(t, byID.Id, byEmail.Id)

	res = NewInserter[Post](db).
		Columns("UserId", "Title").
		Values(
			&Post{UserId: saved.Id, Title: "first"},
			&Post{UserId: saved.Id, Title: "second"},
		).Exec(ctx)
	require.NoError(t, res.Err())

	// Eager and lazy loading agree.
	eager, err := NewSelector[User](db).
		Where(C("Id").EQ(saved.Id)).
		With("posts").
		Get(ctx)
	require.NoError(t, err)
	require.True(t, eager.Posts.Loaded())
	assert.Len(t, eager.Posts.Items(), 2)

	lazy, err := FindByID[User](ctx, db, saved.Id)
	require.NoError(t, err)
	require.NoError(t, Load(ctx, db, lazy, "posts"))
	assert.Len(t, lazy.Posts.Items(), 2)

	post, err := NewSelector[Post](db).
		Where(C("Title").EQ("first")).
		With("author").
		Get(ctx)
	require.NoError(t, err)
	author, ok := post.Author.Get()
	require.True(t, ok)
	assert.Equal(t, saved.Id, author.Id)

	// Empty IN fails before touching the database.
	_, err = NewSelector[Post](db).Where(C("Id").In()).GetMulti(ctx)
	assert.Equal(t, errs.ErrEmptyInList, err)

	// Entity delete without a deleted_at column removes the row.
	require.NoError(t, NewSaver[Post](db).Delete(ctx, post))
	_, err = FindByID[Post](ctx, db, post.Id)
	assert.Equal(t, errs.ErrNoRows, err)

	delRes := NewDeleter[Post](db).Where(C("UserId").EQ(saved.Id)).Exec(ctx)
	require.NoError(t, delRes.Err())
	affected, err := delRes.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSQLiteSoftDelete(t *testing.T) {
	db := memoryDB(t)
	defer db.Close()
	ctx := context.Background()

	res := RawQuery[Account](db, `CREATE TABLE "account" (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT,
		deleted_at TIMESTAMP
	);`).Exec(ctx)
	require.NoError(t, res.Err())

	acc, err := NewSaver[Account](db).Save(ctx, &Account{Email: "soft@example.com"})
	require.NoError(t, err)
	require.True(t, acc.DeletedAt.IsZero())

	// The row survives the delete with its deleted_at column stamped.
	require.NoError(t, NewSaver[Account](db).Delete(ctx, acc))
	assert.False(t, acc.DeletedAt.IsZero())

	kept, err := FindByID[Account](ctx, db, acc.Id)
	require.NoError(t, err)
	assert.False(t, kept.DeletedAt.IsZero())
}
