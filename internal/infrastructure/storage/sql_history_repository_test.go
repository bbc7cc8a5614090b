package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	insertHistoryQuery = "INSERT INTO history_records (user_id, content) VALUES (?, ?)"
	selectHistoryQuery = "SELECT id, user_id, content FROM history_records WHERE id = ?"
)

func newMockSQLRepository(t *testing.T) (*SQLHistoryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLHistoryRepository(db, zap.NewNop()), mock
}

func TestSQLHistoryRepository_Create(t *testing.T) {
	repo, mock := newMockSQLRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(insertHistoryQuery)).
		WithArgs("42", "Tags:\n1girl").
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), "42", "Tags:\n1girl")
	require.NoError(t, err)
	require.Equal(t, uint64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLHistoryRepository_CreateError(t *testing.T) {
	repo, mock := newMockSQLRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(insertHistoryQuery)).
		WithArgs("42", "x").
		WillReturnError(errors.New("disk full"))

	_, err := repo.Create(context.Background(), "42", "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLHistoryRepository_GetByID(t *testing.T) {
	repo, mock := newMockSQLRepository(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "content"}).
		AddRow(int64(3), "42", "Tags:\n1girl")
	mock.ExpectQuery(regexp.QuoteMeta(selectHistoryQuery)).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	record, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, uint64(3), record.ID)
	require.Equal(t, "42", record.UserID)
	require.Equal(t, "Tags:\n1girl", record.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLHistoryRepository_GetByIDMissing(t *testing.T) {
	repo, mock := newMockSQLRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectHistoryQuery)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content"}))

	record, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	require.Nil(t, record)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLHistoryRepository_GetByIDOutOfRange(t *testing.T) {
	repo, mock := newMockSQLRepository(t)

	record, err := repo.GetByID(context.Background(), math.MaxUint64)
	require.NoError(t, err)
	require.Nil(t, record)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLHistoryRepository_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	repo, err := OpenSQLHistoryRepository(ctx, DialectSQLite, path, zap.NewNop())
	require.NoError(t, err)

	content := "Tags:\n1girl, solo\n\nCharacter: hatsune_miku\nhatsune_miku (91%)"
	first, err := repo.Create(ctx, "42", content)
	require.NoError(t, err)
	second, err := repo.Create(ctx, "43", "other")
	require.NoError(t, err)
	require.Greater(t, second, first)

	record, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, content, record.Content)
	require.Equal(t, "42", record.UserID)

	missing, err := repo.GetByID(ctx, 1000)
	require.NoError(t, err)
	require.Nil(t, missing)
	require.NoError(t, repo.Close())

	// После переоткрытия таблица не пересоздаётся и ID продолжают расти
	repo, err = OpenSQLHistoryRepository(ctx, DialectSQLite, path, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	third, err := repo.Create(ctx, "42", "third")
	require.NoError(t, err)
	require.Greater(t, third, second)
}

func TestOpenSQLHistoryRepository_UnknownDialect(t *testing.T) {
	_, err := OpenSQLHistoryRepository(context.Background(), Dialect("oracle"), "x", zap.NewNop())
	require.Error(t, err)
}
