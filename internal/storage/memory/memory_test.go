package memory

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
)

func entry(t *testing.T, account uuid.UUID, date string, minor int64) ledger.Entry {
	t.Helper()
	d, err := civil.ParseDate(date)
	require.NoError(t, err)
	amt, err := money.NewAmountFromMinorUnits("BRL", minor)
	require.NoError(t, err)
	return ledger.Entry{ID: uuid.New(), Date: d, Description: date, Amount: amt, AccountID: account}
}

func seedAccount(t *testing.T, s *Store, name string) ledger.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), ledger.Account{ID: uuid.New(), Name: name, Kind: ledger.AccountKindBank, Currency: "BRL"})
	require.NoError(t, err)
	return a
}

func TestListEntries_OrderedByDateThenID(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := seedAccount(t, s, "Checking")
	for _, d := range []string{"2024-03-05", "2024-01-05", "2024-02-05", "2024-02-05"} {
		_, err := s.CreateEntry(ctx, entry(t, acc.ID, d, -100))
		require.NoError(t, err)
	}
	got, err := s.ListEntries(ctx, ledger.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ordered := prev.Date.Before(cur.Date) || (prev.Date == cur.Date && prev.ID.String() < cur.ID.String())
		assert.True(t, ordered, "entries %d and %d out of order", i-1, i)
	}

	from, _ := civil.ParseDate("2024-02-05")
	to, _ := civil.ParseDate("2024-02-29")
	got, err = s.ListEntries(ctx, ledger.EntryFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateEntry_MovesDateIndex(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := seedAccount(t, s, "Checking")
	e, err := s.CreateEntry(ctx, entry(t, acc.ID, "2024-01-05", -100))
	require.NoError(t, err)
	e.Date, _ = civil.ParseDate("2024-06-01")
	_, err = s.UpdateEntry(ctx, e)
	require.NoError(t, err)

	jan, _ := civil.ParseDate("2024-01-31")
	got, err := s.ListEntries(ctx, ledger.EntryFilter{To: &jan})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteAccount_CascadesEntries(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := seedAccount(t, s, "A"), seedAccount(t, s, "B")
	ea, err := s.CreateEntry(ctx, entry(t, a.ID, "2024-01-05", -100))
	require.NoError(t, err)
	_, err = s.CreateEntry(ctx, entry(t, b.ID, "2024-01-05", -100))
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, a.ID))
	_, err = s.GetEntry(ctx, ea.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	all, err := s.ListEntries(ctx, ledger.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, errors.Is(s.DeleteAccount(ctx, a.ID), errs.ErrNotFound))
}

func TestCreateEntry_UnknownAccount(t *testing.T) {
	_, err := New().CreateEntry(context.Background(), entry(t, uuid.New(), "2024-01-05", -1))
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestEnsureCategory_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, err := s.EnsureCategory(ctx, ledger.Category{Name: "Groceries", Type: ledger.CategoryTypeExpense})
	require.NoError(t, err)
	again, err := s.EnsureCategory(ctx, ledger.Category{Name: "groceries", Type: ledger.CategoryTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := s.EnsureCategory(ctx, ledger.Category{Name: "Groceries", Type: ledger.CategoryTypeIncome})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestTx_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := seedAccount(t, s, "Checking")
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	first := entry(t, acc.ID, "2024-01-05", -100)
	_, err = tx.CreateEntry(ctx, first)
	require.NoError(t, err)
	// Staged writes stay invisible until commit.
	_, err = s.GetEntry(ctx, first.ID)
	require.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, tx.DeleteEntry(ctx, uuid.New()))
	err = tx.Commit(ctx)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = s.GetEntry(ctx, first.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.True(t, errors.Is(tx.Commit(ctx), ErrTxDone))
	_, err = tx.CreateEntry(ctx, first)
	assert.True(t, errors.Is(err, ErrTxDone))
}

func TestTx_CommitAppliesPairing(t *testing.T) {
	ctx := context.Background()
	s := New()
	src, dst := seedAccount(t, s, "Checking"), seedAccount(t, s, "Savings")
	transferID := uuid.New()
	out := entry(t, src.ID, "2024-04-01", -20000)
	in := entry(t, dst.ID, "2024-04-01", 20000)
	out.TransferID, in.TransferID = &transferID, &transferID

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.CreateEntry(ctx, out)
	require.NoError(t, err)
	_, err = tx.CreateEntry(ctx, in)
	require.NoError(t, err)
	_, err = tx.CreateTransfer(ctx, ledger.Transfer{
		ID: transferID, Date: out.Date, Amount: in.Amount,
		SourceAccountID: src.ID, DestinationAccountID: dst.ID,
		OriginEntryID: out.ID, DestinationEntryID: in.ID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	got, err := s.ListTransfers(ctx, &dst.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, out.ID, got[0].OriginEntryID)
	none, err := s.ListTransfers(ctx, &uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTx_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := seedAccount(t, s, "Checking")
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	e := entry(t, acc.ID, "2024-01-05", -100)
	_, err = tx.CreateEntry(ctx, e)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	assert.True(t, errors.Is(tx.Commit(ctx), ErrTxDone))
	_, err = s.GetEntry(ctx, e.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestReset(t *testing.T) {
	s := New()
	seedAccount(t, s, "A")
	s.Reset()
	got, err := s.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
