package tokenstore

import (
	"context"
	"database/sql"
	"testing"

	"gradescrape-backend/lib/scrapers/gradescope/core"
	"gradescrape-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Store {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "tokenstore",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(result.DB)
}

func TestPutGet(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	tokens := core.TokenSet{
		"signed_token":        "abc",
		"_gradescope_session": "def",
	}
	require.NoError(t, store.Put(ctx, "default", tokens))

	got, err := store.Get(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, tokens, got)
}

func TestGetMissingAccount(t *testing.T) {
	store := setup(t)

	_, err := store.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPutReplacesWholesale(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "default", core.TokenSet{
		"signed_token": "stale",
		"remember_me":  "1",
	}))
	require.NoError(t, store.Put(ctx, "default", core.TokenSet{
		"signed_token": "fresh",
	}))

	got, err := store.Get(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, core.TokenSet{"signed_token": "fresh"}, got)
}

func TestAccounts(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "work", core.TokenSet{"a": "1"}))
	require.NoError(t, store.Put(ctx, "personal", core.TokenSet{"b": "2"}))

	accounts, err := store.Accounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"personal", "work"}, accounts)
}

func TestDelete(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "default", core.TokenSet{"a": "1"}))
	require.NoError(t, store.Delete(ctx, "default"))

	_, err := store.Get(ctx, "default")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
