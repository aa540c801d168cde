package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/config"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/storage/memory"
)

func TestPrepare_SeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cfg := config.Config{Ledger: config.LedgerConfig{Currency: "BRL"}}
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, prepare(ctx, store, cfg, true, l, "memory"))
	first, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)

	require.NoError(t, prepare(ctx, store, cfg, true, l, "memory"))
	second, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPrepare_ReusesAccountsByName(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cfg := config.Config{Ledger: config.LedgerConfig{Currency: "BRL"}}
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	mine := ledger.Account{ID: uuid.New(), Name: "checking", Kind: ledger.AccountKindBank, Currency: "BRL"}
	_, err := store.CreateAccount(ctx, mine)
	require.NoError(t, err)

	require.NoError(t, prepare(ctx, store, cfg, true, l, "memory"))
	accs, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 3)
	var ids []uuid.UUID
	for _, a := range accs {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, mine.ID)
}

func TestPrepare_CategoriesOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cfg := config.Config{Ledger: config.LedgerConfig{Currency: "BRL"}}

	require.NoError(t, prepare(ctx, store, cfg, false, slog.New(slog.NewTextHandler(io.Discard, nil)), "postgres"))
	accs, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accs)
	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)
}
