package sqlorm

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

type Device struct {
	Tracked
	Id   uuid.UUID `orm:"pk=external"`
	Name string
}

type Account struct {
	Id        int64 `orm:"pk"`
	Email     string
	DeletedAt time.Time `orm:"deleted_at"`
}

func TestSaver_Insert_Postgres(t *testing.T) {
	db, mock := mockDB(t, Postgres, DBWithClock(fixedClock))
	mock.ExpectQuery(`INSERT INTO "user" ("email","active","age","created_at","updated_at") VALUES ($1,$2,$3,$4,$5) RETURNING *;`).
		WithArgs("tom@example.com", true, int8(18), fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "active", "age", "created_at", "updated_at"}).
			AddRow(int64(7), "tom@example.com", true, int64(18), fixedNow, fixedNow))

	u := &User{Email: "tom@example.com", Active: true, Age: 18}
	saved, err := NewSaver[User](db).Save(context.Background(), u)
	require.NoError(t, err)

	// The returned instance carries the database-assigned key.
	assert.Equal(t, int64(7), saved.Id)
	assert.True(t, saved.CreatedAt.Equal(fixedNow))
	assert.True(t, saved.UpdatedAt.Equal(fixedNow))
	// The passed instance was stamped in place before binding.
	assert.True(t, u.CreatedAt.Equal(fixedNow))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_Insert_SQLiteRefetch(t *testing.T) {
	db, mock := mockDB(t, SQLite3, DBWithClock(fixedClock))
	mock.ExpectExec(`INSERT INTO "user" ("email","active","age","created_at","updated_at") VALUES (?,?,?,?,?);`).
		WithArgs("tom@example.com", int64(1), int8(18), fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT * FROM "user" WHERE "id" = ?;`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "active", "age", "created_at", "updated_at"}).
			AddRow(int64(7), "tom@example.com", int64(1), int64(18), fixedNow, fixedNow))

	saved, err := NewSaver[User](db).Save(context.Background(), &User{
		Email:  "tom@example.com",
		Active: true,
		Age:    18,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.Id)
	assert.True(t, saved.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_Update_Postgres(t *testing.T) {
	db, mock := mockDB(t, Postgres, DBWithClock(fixedClock))
	mock.ExpectQuery(`UPDATE "user" SET "email"=$1,"active"=$2,"age"=$3,"updated_at"=$4 WHERE "id" = $5 RETURNING *;`).
		WithArgs("tom@example.com", false, int8(19), fixedNow, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "active", "age", "created_at", "updated_at"}).
			AddRow(int64(5), "tom@example.com", false, int64(19), fixedNow.Add(-time.Hour), fixedNow))

	u := &User{Id: 5, Email: "tom@example.com", Age: 19}
	saved, err := NewSaver[User](db).Save(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, int64(5), saved.Id)
	assert.True(t, saved.UpdatedAt.Equal(fixedNow))
	// created_at is never restamped on update.
	assert.True(t, u.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_Update_SQLiteRefetch(t *testing.T) {
	db, mock := mockDB(t, SQLite3, DBWithClock(fixedClock))
	mock.ExpectExec(`UPDATE "user" SET "email"=?,"active"=?,"age"=?,"updated_at"=? WHERE "id" = ?;`).
		WithArgs("tom@example.com", int64(0), int8(19), fixedNow, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "user" WHERE "id" = ?;`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "active", "age", "created_at", "updated_at"}).
			AddRow(int64(5), "tom@example.com", int64(0), int64(19), fixedNow, fixedNow))

	saved, err := NewSaver[User](db).Save(context.Background(), &User{
		Id:    5,
		Email: "tom@example.com",
		Age:   19,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.Id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_ExternalKey(t *testing.T) {
	db, mock := mockDB(t, SQLite3, DBWithClock(fixedClock))
	devID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	// A fresh external-key entity gets a generated key and inserts.
	mock.ExpectExec(`INSERT INTO "device" ("id","name") VALUES (?,?);`).
		WithArgs(sqlmock.AnyArg(), "printer").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "device" WHERE "id" = ?;`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(devID.String(), "printer"))

	dev := &Device{Name: "printer"}
	saved, err := NewSaver[Device](db).Save(context.Background(), dev)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dev.Id)
	assert.Equal(t, devID, saved.Id)
	assert.True(t, saved.Persisted())

	// The fetched instance carries the persisted flag, so saving it again
	// updates even though its key is non-zero either way.
	mock.ExpectExec(`UPDATE "device" SET "name"=? WHERE "id" = ?;`).
		WithArgs("scanner", devID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT * FROM "device" WHERE "id" = ?;`).
		WithArgs(devID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(devID.String(), "scanner"))

	saved.Name = "scanner"
	again, err := NewSaver[Device](db).Save(context.Background(), saved)
	require.NoError(t, err)
	assert.Equal(t, "scanner", again.Name)
	assert.True(t, again.Persisted())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_AutoKeyOmitted(t *testing.T) {
	db, mock := mockDB(t, SQLite3)
	mock.ExpectExec(`INSERT INTO "test_model" ("first_name","age","last_name") VALUES (?,?,?);`).
		WithArgs("Tom", int8(18), nil).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT * FROM "test_model" WHERE "id" = ?;`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"}).
			AddRow(int64(42), "Tom", int64(18), nil))

	saved, err := NewSaver[TestModel](db).Save(context.Background(), &TestModel{
		FirstName: "Tom",
		Age:       18,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.Id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_SoftDelete(t *testing.T) {
	// An entity declaring deleted_at is never removed; the column is
	// stamped and the instance carries the same instant.
	db, mock := mockDB(t, SQLite3, DBWithClock(fixedClock))
	mock.ExpectExec(`UPDATE "account" SET "deleted_at"=? WHERE "id" = ?;`).
		WithArgs(fixedNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &Account{Id: 7, Email: "soft@example.com"}
	require.NoError(t, NewSaver[Account](db).Delete(context.Background(), a))
	assert.True(t, a.DeletedAt.Equal(fixedNow))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_SoftDelete_Postgres(t *testing.T) {
	db, mock := mockDB(t, Postgres, DBWithClock(fixedClock))
	mock.ExpectExec(`UPDATE "account" SET "deleted_at"=$1 WHERE "id" = $2;`).
		WithArgs(fixedNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewSaver[Account](db).Delete(context.Background(), &Account{Id: 7})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_HardDelete(t *testing.T) {
	// No deleted_at column, so the row is removed physically.
	db, mock := mockDB(t, SQLite3, DBWithClock(fixedClock))
	mock.ExpectExec(`DELETE FROM "user" WHERE "id" = ?;`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewSaver[User](db).Delete(context.Background(), &User{Id: 5})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaver_NilEntity(t *testing.T) {
	db := buildDB(t, SQLite3)
	_, err := NewSaver[User](db).Save(context.Background(), nil)
	assert.Equal(t, errs.ErrSaveNilEntity, err)

	err = NewSaver[User](db).Delete(context.Background(), nil)
	assert.Equal(t, errs.ErrDeleteNilEntity, err)
}
