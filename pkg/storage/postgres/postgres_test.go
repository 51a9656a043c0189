package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

func setupPostgresStorageTest(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := &PostgresStorage{db: db}
	return s, mock, func() { db.Close() }
}

func TestPostgresStorage_CreateSchemaCheck(t *testing.T) {
	s, mock, cleanup := setupPostgresStorageTest(t)
	defer cleanup()

	check := &registrytypes.SchemaCheck{
		TargetID:  "target-1",
		SchemaSDL: "type Query { hello: String }",
		IsSuccess: true,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}

	mock.ExpectExec("INSERT INTO schema_checks").WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.CreateSchemaCheck(context.Background(), check)
	require.NoError(t, err)
	require.NotEmpty(t, check.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_PurgeExpiredSchemaChecks(t *testing.T) {
	s, mock, cleanup := setupPostgresStorageTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM schema_checks").WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := s.PurgeExpiredSchemaChecks(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ApproveFailedSchemaCheck(t *testing.T) {
	s, mock, cleanup := setupPostgresStorageTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE schema_checks SET is_manually_approved").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.ApproveFailedSchemaCheck(context.Background(), "check-1", "alice")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ApproveFailedSchemaCheck_NotFound(t *testing.T) {
	s, mock, cleanup := setupPostgresStorageTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE schema_checks SET is_manually_approved").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.ApproveFailedSchemaCheck(context.Background(), "check-1", "alice")
	require.Error(t, err)
}

func TestPostgresStorage_GetMaybeLatestVersion_NoRows(t *testing.T) {
	s, mock, cleanup := setupPostgresStorageTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, target_id, created_at").WillReturnError(sql.ErrNoRows)

	v, err := s.GetMaybeLatestVersion(context.Background(), "target-1")
	require.NoError(t, err)
	require.Nil(t, v)
}
