package tokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazakov/taskmate/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetOrCreate_NewToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key"}).AddRow("fresh-key")
	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WithArgs("fresh-key", int64(1)).
		WillReturnRows(rows)

	key, err := repo.GetOrCreate(context.Background(), 1, "fresh-key")
	require.NoError(t, err)
	assert.Equal(t, "fresh-key", key)
}

func TestGetOrCreate_ExistingTokenWins(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// Conflict on user_id: the stored key is returned, not the candidate.
	rows := sqlmock.NewRows([]string{"key"}).AddRow("stored-key")
	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WithArgs("candidate-key", int64(1)).
		WillReturnRows(rows)

	key, err := repo.GetOrCreate(context.Background(), 1, "candidate-key")
	require.NoError(t, err)
	assert.Equal(t, "stored-key", key)
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "user_id", "created_at"}).
		AddRow("k1", int64(7), time.Now())
	mock.ExpectQuery(`SELECT\s+key,\s*user_id,\s*created_at\s+FROM\s+auth_tokens\s+WHERE\s+key\s*=\s*\$1`).
		WithArgs("k1").
		WillReturnRows(rows)

	tok, err := repo.Find(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), tok.UserID)
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+key,\s*user_id`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByUserID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+auth_tokens\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByUserID(context.Background(), 7))
}

func TestDeleteByUserID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+auth_tokens`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("db down"))

	err := repo.DeleteByUserID(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
