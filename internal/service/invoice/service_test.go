package invoice

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/storage/memory"
)

func day(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func setup(t *testing.T) (*memory.Store, Service, ledger.Account) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	closing, due := 10, 20
	card := ledger.Account{ID: uuid.New(), Name: "Card", Kind: ledger.AccountKindCreditCard, Currency: "BRL", ClosingDay: &closing, DueDay: &due}
	_, err := store.CreateAccount(ctx, card)
	require.NoError(t, err)
	for _, e := range []struct {
		date  string
		minor int64
	}{
		{"2024-02-15", -5000},
		{"2024-03-01", -3000},
		{"2024-03-10", -2000},
		{"2024-03-11", -700},
		{"2024-01-20", -1200},
	} {
		amt, err := money.NewAmountFromMinorUnits("BRL", e.minor)
		require.NoError(t, err)
		_, err = store.CreateEntry(ctx, ledger.Entry{ID: uuid.New(), Date: day(t, e.date), Description: e.date, Amount: amt, AccountID: card.ID})
		require.NoError(t, err)
	}
	return store, New(store), card
}

func TestCurrent_ScenarioC(t *testing.T) {
	_, svc, card := setup(t)
	inv, err := svc.Current(context.Background(), card.ID, day(t, "2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03", inv.Period)
	assert.Equal(t, "2024-02-11", inv.Cycle.Start.String())
	assert.Equal(t, "-100.00", inv.Total.Decimal().String())
	assert.Equal(t, "100.00", inv.Owed.Decimal().String())
	assert.Equal(t, billing.StatusClosed, inv.Status)
	assert.Equal(t, 8, inv.DaysToDue)
	assert.Len(t, inv.Entries, 3)
}

func TestOpen_CycleContainingToday(t *testing.T) {
	_, svc, card := setup(t)
	inv, err := svc.Open(context.Background(), card.ID, day(t, "2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, "2024-04", inv.Period)
	assert.Equal(t, billing.StatusOpen, inv.Status)
	assert.Equal(t, "-7.00", inv.Total.Decimal().String())
}

func TestForPeriodAndHistory(t *testing.T) {
	ctx := context.Background()
	_, svc, card := setup(t)
	today := day(t, "2024-03-25")

	inv, err := svc.ForPeriod(ctx, card.ID, "2024-02", today)
	require.NoError(t, err)
	assert.Equal(t, "-12.00", inv.Total.Decimal().String())
	assert.Equal(t, billing.StatusOverdue, inv.Status)

	inv, err = svc.ForPeriod(ctx, card.ID, "2023-12", today)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, inv.Status)

	_, err = svc.ForPeriod(ctx, card.ID, "2024-13", today)
	assert.True(t, errors.Is(err, errs.ErrInvalid))

	hist, err := svc.History(ctx, card.ID, today, 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, []string{"2024-03", "2024-02", "2024-01"}, []string{hist[0].Period, hist[1].Period, hist[2].Period})
	assert.Equal(t, "-100.00", hist[0].Total.Decimal().String())
	assert.Equal(t, "-12.00", hist[1].Total.Decimal().String())
	assert.True(t, hist[2].Total.IsZero())

	_, err = svc.History(ctx, card.ID, today, 0)
	assert.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestReconcile(t *testing.T) {
	_, svc, card := setup(t)
	rec, err := svc.Reconcile(context.Background(), card.ID, "2024-03", day(t, "2024-03-12"), decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, rec.Result.IsReconciled)

	rec, err = svc.Reconcile(context.Background(), card.ID, "2024-03", day(t, "2024-03-12"), decimal.RequireFromString("101.50"))
	require.NoError(t, err)
	assert.False(t, rec.Result.IsReconciled)
	assert.Equal(t, "1.5", rec.Result.Difference.String())
}

func TestNonCardAccount(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := setup(t)
	bank := ledger.Account{ID: uuid.New(), Name: "Bank", Kind: ledger.AccountKindBank, Currency: "BRL"}
	_, err := store.CreateAccount(ctx, bank)
	require.NoError(t, err)
	_, err = svc.Current(ctx, bank.ID, day(t, "2024-03-12"))
	assert.True(t, errors.Is(err, errs.ErrInvalid))

	_, err = svc.Current(ctx, uuid.New(), day(t, "2024-03-12"))
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
