package entry

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/storage/memory"
)

func brl(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	require.NoError(t, err)
	return a
}

func day(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func setup(t *testing.T) (*memory.Store, Service, ledger.Account, ledger.Account) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	closing, due := 10, 20
	bank := ledger.Account{ID: uuid.New(), Name: "Checking", Kind: ledger.AccountKindBank, Currency: "BRL"}
	card := ledger.Account{ID: uuid.New(), Name: "Card", Kind: ledger.AccountKindCreditCard, Currency: "BRL", ClosingDay: &closing, DueDay: &due}
	for _, a := range []ledger.Account{bank, card} {
		_, err := store.CreateAccount(ctx, a)
		require.NoError(t, err)
	}
	return store, New(store, store), bank, card
}

func TestCreate_StampsPeriodKeyOnCards(t *testing.T) {
	ctx := context.Background()
	_, svc, bank, card := setup(t)

	e, err := svc.Create(ctx, ledger.Entry{Date: day(t, "2024-03-11"), Description: " market ", Amount: brl(t, -4590), AccountID: card.ID})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "2024-04", e.PeriodKey)
	assert.Equal(t, "market", e.Description)

	e, err = svc.Create(ctx, ledger.Entry{Date: day(t, "2024-03-11"), Description: "salary", Amount: brl(t, 900000), AccountID: bank.ID})
	require.NoError(t, err)
	assert.Empty(t, e.PeriodKey)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	store, svc, bank, _ := setup(t)
	sys, err := store.EnsureCategory(ctx, ledger.Category{Name: ledger.CategoryNameTransfer, Type: ledger.CategoryTypeSystem})
	require.NoError(t, err)
	missing := uuid.New()
	usd, err := money.NewAmountFromMinorUnits("USD", -100)
	require.NoError(t, err)

	valid := ledger.Entry{Date: day(t, "2024-03-11"), Description: "coffee", Amount: brl(t, -900), AccountID: bank.ID}
	tests := []struct {
		name   string
		mutate func(e *ledger.Entry)
	}{
		{"no account", func(e *ledger.Entry) { e.AccountID = uuid.Nil }},
		{"unknown account", func(e *ledger.Entry) { e.AccountID = uuid.New() }},
		{"no date", func(e *ledger.Entry) { e.Date = civil.Date{} }},
		{"blank description", func(e *ledger.Entry) { e.Description = "  " }},
		{"zero amount", func(e *ledger.Entry) { e.Amount = brl(t, 0) }},
		{"currency mismatch", func(e *ledger.Entry) { e.Amount = usd }},
		{"unknown category", func(e *ledger.Entry) { e.CategoryID = &missing }},
		{"system category", func(e *ledger.Entry) { e.CategoryID = &sys.ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			_, err := svc.Create(ctx, e)
			assert.True(t, errors.Is(err, errs.ErrInvalid), "got %v", err)
		})
	}
}

func TestPairedLegsAreRefused(t *testing.T) {
	ctx := context.Background()
	store, svc, bank, _ := setup(t)
	transferID := uuid.New()
	leg := ledger.Entry{ID: uuid.New(), Date: day(t, "2024-03-01"), Description: "leg", Amount: brl(t, -100), AccountID: bank.ID, TransferID: &transferID}
	_, err := store.CreateEntry(ctx, leg)
	require.NoError(t, err)

	upd := leg
	upd.Amount = brl(t, -200)
	_, err = svc.Update(ctx, upd)
	assert.True(t, errors.Is(err, errs.ErrPairedLeg))
	assert.True(t, errors.Is(svc.Delete(ctx, leg.ID), errs.ErrPairedLeg))
	_, err = svc.SetReconciled(ctx, leg.ID, true)
	assert.True(t, errors.Is(err, errs.ErrPairedLeg))

	got, err := svc.Get(ctx, leg.ID)
	require.NoError(t, err)
	assert.Equal(t, leg, got)
}

func TestCreateIgnoresClientPairingIDs(t *testing.T) {
	ctx := context.Background()
	_, svc, bank, _ := setup(t)
	forged := uuid.New()
	e, err := svc.Create(ctx, ledger.Entry{Date: day(t, "2024-03-01"), Description: "x", Amount: brl(t, -1), AccountID: bank.ID, InvoicePaymentID: &forged})
	require.NoError(t, err)
	assert.Nil(t, e.InvoicePaymentID)
	require.NoError(t, svc.Delete(ctx, e.ID))
}

func TestUpdateMovesAcrossAccountsAndRestamps(t *testing.T) {
	ctx := context.Background()
	_, svc, bank, card := setup(t)
	e, err := svc.Create(ctx, ledger.Entry{Date: day(t, "2024-03-01"), Description: "books", Amount: brl(t, -5000), AccountID: bank.ID})
	require.NoError(t, err)

	e.AccountID = card.ID
	e.Date = day(t, "2024-03-10")
	e.Reconciled = true
	got, err := svc.Update(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", got.PeriodKey)
	assert.True(t, got.Reconciled)

	got, err = svc.SetReconciled(ctx, e.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Reconciled)

	_, err = svc.Update(ctx, ledger.Entry{ID: uuid.New()})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	_, svc, bank, card := setup(t)
	for _, d := range []string{"2024-01-05", "2024-02-05", "2024-03-05"} {
		_, err := svc.Create(ctx, ledger.Entry{Date: day(t, d), Description: d, Amount: brl(t, -100), AccountID: bank.ID})
		require.NoError(t, err)
		_, err = svc.Create(ctx, ledger.Entry{Date: day(t, d), Description: d, Amount: brl(t, -100), AccountID: card.ID})
		require.NoError(t, err)
	}
	from, to := day(t, "2024-02-01"), day(t, "2024-03-05")
	got, err := svc.List(ctx, ledger.EntryFilter{AccountID: &bank.ID, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-02-05", got[0].Date.String())
	assert.Equal(t, "2024-03-05", got[1].Date.String())

	_, err = svc.List(ctx, ledger.EntryFilter{From: &to, To: &from})
	assert.True(t, errors.Is(err, errs.ErrInvalid))
}
