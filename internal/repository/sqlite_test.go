package repository

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/atinyakov/GophVault/internal/db"
	"github.com/atinyakov/GophVault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLiteCredentialRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))
	s, err := db.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSQLiteCredentialRepository(s)
}

func record(id, owner, name string) models.CredentialRecord {
	return models.CredentialRecord{ID: id, Owner: owner, Name: name, Username: name + "-user", PasswordHash: "digest-" + id}
}

func TestSQLiteRepo_InsertAndList(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("1", "Andrew", "Gmail")))
	require.NoError(t, repo.Insert(ctx, record("2", "Andrew", "Bank")))
	require.NoError(t, repo.Insert(ctx, record("3", "Roy", "Instagram")))

	got, err := repo.ListByOwner(ctx, "Andrew")
	require.NoError(t, err)
	assert.Equal(t, []models.CredentialRecord{record("1", "Andrew", "Gmail"), record("2", "Andrew", "Bank")}, got)
}

func TestSQLiteRepo_ListUnknownOwner(t *testing.T) {
	repo := setupSQLite(t)

	got, err := repo.ListByOwner(context.Background(), "NoSuchOwner")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteRepo_InsertDuplicateID(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("1", "Andrew", "Gmail")))
	err := repo.Insert(ctx, record("1", "Andrew", "Other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert record")
}

func TestSQLiteRepo_DeleteByOwnerName(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("1", "Andrew", "Gmail")))
	require.NoError(t, repo.Insert(ctx, record("2", "Andrew", "Gmail")))
	require.NoError(t, repo.Insert(ctx, record("3", "Andrew", "Bank")))
	require.NoError(t, repo.Insert(ctx, record("4", "Roy", "Gmail")))

	n, err := repo.DeleteByOwnerName(ctx, "Andrew", "Gmail")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "all rows sharing the pair are removed")

	left, err := repo.ListByOwner(ctx, "Andrew")
	require.NoError(t, err)
	assert.Equal(t, []models.CredentialRecord{record("3", "Andrew", "Bank")}, left)

	roy, err := repo.ListByOwner(ctx, "Roy")
	require.NoError(t, err)
	assert.Len(t, roy, 1)

	n, err = repo.DeleteByOwnerName(ctx, "Andrew", "Gmail")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteRepo_ConcurrentWrites(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Insert(ctx, record(fmt.Sprint(i), "Andrew", fmt.Sprintf("svc-%d", i%5))))
		}()
	}
	wg.Wait()

	got, err := repo.ListByOwner(ctx, "Andrew")
	require.NoError(t, err)
	assert.Len(t, got, 20)

	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.DeleteByOwnerName(ctx, "Andrew", fmt.Sprintf("svc-%d", i))
			assert.NoError(t, err)
			assert.Equal(t, int64(4), n)
		}()
	}
	wg.Wait()

	got, err = repo.ListByOwner(ctx, "Andrew")
	require.NoError(t, err)
	assert.Empty(t, got)
}
