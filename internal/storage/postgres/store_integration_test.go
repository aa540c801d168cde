package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/posting"
	"github.com/tinoosan/finledger/internal/storage/postgres"
)

func openTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	// Applying twice must be harmless.
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStore_TransferRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{ledger.CategoryNameTransfer, ledger.CategoryNameInvoicePayment} {
		_, err := s.EnsureCategory(ctx, ledger.Category{Name: name, Type: ledger.CategoryTypeSystem})
		require.NoError(t, err)
	}
	from := ledger.Account{ID: uuid.New(), Name: "Checking " + uuid.NewString()[:8], Kind: ledger.AccountKindBank, Currency: "BRL"}
	to := ledger.Account{ID: uuid.New(), Name: "Savings " + uuid.NewString()[:8], Kind: ledger.AccountKindBank, Currency: "BRL"}
	for _, a := range []ledger.Account{from, to} {
		_, err := s.CreateAccount(ctx, a)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		_ = s.DeleteAccount(context.Background(), from.ID)
		_ = s.DeleteAccount(context.Background(), to.ID)
	})

	svc := posting.New(s, s, posting.WithTx(func(ctx context.Context) (posting.Tx, error) { return s.BeginTx(ctx) }))
	amt, err := money.NewAmountFromMinorUnits("BRL", 12345)
	require.NoError(t, err)
	tr, err := svc.CreateTransfer(ctx, posting.Request{
		Date:                 civil.Date{Year: 2024, Month: time.May, Day: 2},
		Description:          "savings",
		Amount:               amt,
		SourceAccountID:      from.ID,
		DestinationAccountID: to.ID,
	})
	require.NoError(t, err)

	origin, err := s.GetEntry(ctx, tr.OriginEntryID)
	require.NoError(t, err)
	require.NotNil(t, origin.TransferID)
	assert.Equal(t, tr.ID, *origin.TransferID)
	units, _ := origin.Amount.MinorUnits()
	assert.Equal(t, int64(-12345), units)

	got, err := s.ListEntries(ctx, ledger.EntryFilter{AccountID: &to.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tr.DestinationEntryID, got[0].ID)

	require.NoError(t, svc.DeleteTransfer(ctx, tr.ID))
	_, err = s.GetTransfer(ctx, tr.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = s.GetEntry(ctx, tr.OriginEntryID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
