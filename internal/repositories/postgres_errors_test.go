package repositories_test

import (
	"context"
	"testing"

	"purchaselog/internal/models"
	"purchaselog/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGORMUserRepository_PostgresUniqueViolation(t *testing.T) {
	db, mock := newPostgresMock(t)
	store := repositories.NewGORMStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := store.WithinTransaction(context.Background(), func(tx repositories.Tx) error {
		return tx.Users().Create(&models.User{Username: "alice", Email: "a@x.com"})
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMPurchaseRepository_PostgresForeignKeyViolation(t *testing.T) {
	db, mock := newPostgresMock(t)
	store := repositories.NewGORMStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "purchases"`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update violates foreign key constraint"})
	mock.ExpectRollback()

	err := store.WithinTransaction(context.Background(), func(tx repositories.Tx) error {
		return tx.Purchases().Create(&models.Purchase{UserID: 7, SkuName: "widget", Price: 1, Quantity: 1})
	})
	assert.ErrorIs(t, err, repositories.ErrForeignKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMUserRepository_PostgresNotFound(t *testing.T) {
	db, mock := newPostgresMock(t)
	store := repositories.NewGORMStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))
	mock.ExpectRollback()

	err := store.WithinTransaction(context.Background(), func(tx repositories.Tx) error {
		_, err := tx.Users().GetByEmail("a@x.com")
		return err
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
