package storage

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBadgerHistoryRepository_CreateAndGet(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)

	repo, err := NewBadgerHistoryRepository(db)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	content := "Tags:\n1girl, solo\n\nSafety level: general\ngeneral (97%)"

	first, err := repo.Create(ctx, "42", content)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)

	second, err := repo.Create(ctx, "42", "second")
	require.NoError(t, err)
	require.Equal(t, uint64(2), second)

	record, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, first, record.ID)
	require.Equal(t, "42", record.UserID)
	require.Equal(t, content, record.Content)

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestBadgerHistoryRepository_IDsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := OpenBadgerHistoryRepository(dir, zap.NewNop())
	require.NoError(t, err)
	first, err := repo.Create(ctx, "1", "a")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenBadgerHistoryRepository(dir, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	second, err := repo.Create(ctx, "1", "b")
	require.NoError(t, err)
	require.Greater(t, second, first)

	record, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "a", record.Content)
}
