package credstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLiteBackend, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "credentials.db")
	b, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, dsn
}

func TestSQLite_SetGet(t *testing.T) {
	b, _ := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v1"))
	require.NoError(t, b.Set(ctx, "k", "v2")) // upsert

	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestSQLite_GetMissing(t *testing.T) {
	b, _ := openTestSQLite(t)

	v, ok, err := b.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSQLite_DeleteIsIdempotent(t *testing.T) {
	b, _ := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "x", "1"))
	require.NoError(t, b.Delete(ctx, "x"))
	require.NoError(t, b.Delete(ctx, "x"))

	_, ok, err := b.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_PairRoundTripAndClear(t *testing.T) {
	b, _ := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, b.SetPair(ctx, models.CredentialPair{AccessToken: "a1", RefreshToken: "r1"}))

	a, _, _ := b.Get(ctx, common.AccessTokenKey)
	r, _, _ := b.Get(ctx, common.RefreshTokenKey)
	assert.Equal(t, "a1", a)
	assert.Equal(t, "r1", r)

	require.NoError(t, b.DeletePair(ctx))
	_, okA, _ := b.Get(ctx, common.AccessTokenKey)
	_, okR, _ := b.Get(ctx, common.RefreshTokenKey)
	assert.False(t, okA)
	assert.False(t, okR)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	b, dsn := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, b.SetPair(ctx, models.CredentialPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, b.Close())

	again, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer again.Close()

	v, ok, err := again.Get(ctx, common.RefreshTokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r", v)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(context.Background(), db))
	require.NoError(t, RunMigrations(context.Background(), db))
}

func TestSQLite_ErrorsWrapped(t *testing.T) {
	b, _ := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, b.Close())

	_, _, err := b.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get credential[k]")
	require.ErrorContains(t, b.Set(ctx, "k", "v"), "failed to set credential[k]")
	require.ErrorContains(t, b.Delete(ctx, "k"), "failed to delete credential[k]")
	require.Error(t, b.SetPair(ctx, models.CredentialPair{AccessToken: "a", RefreshToken: "r"}))
}
