package db

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupMockPostgres(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Repositories) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	database, err := OpenPostgresConn(conn, zap.NewNop())
	require.NoError(t, err)

	return conn, mock, NewRepositories(database)
}

func TestPostgresExistsByNormalizedEmail(t *testing.T) {
	conn, mock, repos := setupMockPostgres(t)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE lower(trim(email)) = $1`)).
		WithArgs("mina@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repos.Users.ExistsByNormalizedEmail("mina@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByNormalizedEmail_NotFound(t *testing.T) {
	conn, mock, repos := setupMockPostgres(t)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE lower(trim(email)) = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := repos.Users.FindByNormalizedEmail("nobody@example.com")

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteScheduledProcedureScopesByOwner(t *testing.T) {
	conn, mock, repos := setupMockPostgres(t)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "scheduled_procedures" WHERE id = $1 AND user_id = $2`)).
		WithArgs(12, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := repos.ScheduledProcedures.DeleteByIDForUser(7, 12)

	require.NoError(t, err)
	assert.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateParticipationStatus(t *testing.T) {
	conn, mock, repos := setupMockPostgres(t)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "user_challenges" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repos.Challenges.UpdateParticipationStatus(3, "COMPLETED", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountActiveByUser_Error(t *testing.T) {
	conn, mock, repos := setupMockPostgres(t)
	defer conn.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_challenges"`).
		WillReturnError(sql.ErrConnDone)

	count, err := repos.Challenges.CountActiveByUser(7)

	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
