package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewFromDB(db), mock
}

func brl(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	require.NoError(t, err)
	return a
}

var entryCols = []string{"id", "date", "description", "amount_minor", "currency", "account_id", "category_id", "reconciled", "transfer_id", "invoice_payment_id", "period_key"}

func TestGetAccount_ScansCardDays(t *testing.T) {
	store, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`select id, name, kind, currency, closing_day, due_day from accounts where id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "kind", "currency", "closing_day", "due_day"}).
			AddRow(id.String(), "Visa", "credit_card", "BRL", int64(10), int64(20)))

	a, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountKindCreditCard, a.Kind)
	require.NotNil(t, a.ClosingDay)
	assert.Equal(t, 10, *a.ClosingDay)
	assert.Equal(t, 20, *a.DueDay)
}

func TestGetAccount_NotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`select (.+) from accounts where id = \$1`).WillReturnError(sql.ErrNoRows)
	_, err := store.GetAccount(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestCreateAccount_UppercasesCurrency(t *testing.T) {
	store, mock := newMock(t)
	a := ledger.Account{ID: uuid.New(), Name: "Wallet", Kind: ledger.AccountKindCash, Currency: "brl"}
	mock.ExpectExec(`insert into accounts`).
		WithArgs(a.ID, "Wallet", "cash", "BRL", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := store.CreateAccount(context.Background(), a)
	require.NoError(t, err)
}

func TestUpdateAccount_NoRows(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`update accounts set`).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := store.UpdateAccount(context.Background(), ledger.Account{ID: uuid.New(), Name: "x", Kind: ledger.AccountKindBank})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestListEntries_BuildsFilter(t *testing.T) {
	store, mock := newMock(t)
	accountID, transferID, id := uuid.New(), uuid.New(), uuid.New()
	from := civil.Date{Year: 2024, Month: time.February, Day: 11}
	to := civil.Date{Year: 2024, Month: time.March, Day: 10}

	mock.ExpectQuery(regexp.QuoteMeta(`from entries where account_id = $1 and date >= $2 and date <= $3 order by date, id`)).
		WithArgs(accountID, from.In(time.UTC), to.In(time.UTC)).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(id.String(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "market", int64(-3000), "BRL ", accountID.String(), nil, true, transferID.String(), nil, "2024-03"))

	got, err := store.ListEntries(context.Background(), ledger.EntryFilter{AccountID: &accountID, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "2024-03-01", e.Date.String())
	assert.Equal(t, "-30.00", e.Amount.Decimal().String())
	assert.Equal(t, "BRL", e.Amount.Curr().Code())
	assert.Nil(t, e.CategoryID)
	require.NotNil(t, e.TransferID)
	assert.Equal(t, transferID, *e.TransferID)
	assert.Nil(t, e.InvoicePaymentID)
	assert.True(t, e.Reconciled)
	assert.Equal(t, "2024-03", e.PeriodKey)
}

func TestListEntries_NoFilter(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`from entries order by date, id`)).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(entryCols))
	got, err := store.ListEntries(context.Background(), ledger.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTx_CommitsPairing(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	transferID := uuid.New()
	origin := ledger.Entry{ID: uuid.New(), Date: civil.Date{Year: 2024, Month: time.April, Day: 1}, Amount: brl(t, -20000), AccountID: uuid.New(), TransferID: &transferID}
	dest := origin
	dest.ID, dest.Amount, dest.AccountID = uuid.New(), brl(t, 20000), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`insert into entries`).
		WithArgs(origin.ID, sqlmock.AnyArg(), "", int64(-20000), "BRL", origin.AccountID, nil, false, transferID.String(), nil, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into entries`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into transfers`).
		WithArgs(transferID, sqlmock.AnyArg(), "", int64(20000), "BRL", origin.AccountID, dest.AccountID, origin.ID, dest.ID, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.CreateEntry(ctx, origin)
	require.NoError(t, err)
	_, err = tx.CreateEntry(ctx, dest)
	require.NoError(t, err)
	_, err = tx.CreateTransfer(ctx, ledger.Transfer{
		ID: transferID, Date: origin.Date, Amount: brl(t, 20000),
		SourceAccountID: origin.AccountID, DestinationAccountID: dest.AccountID,
		OriginEntryID: origin.ID, DestinationEntryID: dest.ID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}

func TestTx_RollbackOnFailure(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectExec(`delete from entries where id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`delete from entries where id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteEntry(ctx, uuid.New()))
	err = tx.DeleteEntry(ctx, uuid.New())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	require.NoError(t, tx.Rollback(ctx))
}

func TestListInvoicePayments_ByAccount(t *testing.T) {
	store, mock := newMock(t)
	card, bank, id := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`from invoice_payments where source_account_id = $1 or destination_account_id = $1 order by date, id`)).
		WithArgs(card).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "description", "amount_minor", "currency", "source_account_id", "destination_account_id", "origin_entry_id", "destination_entry_id", "reconciled"}).
			AddRow(id.String(), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "card bill", int64(10000), "BRL", bank.String(), card.String(), uuid.NewString(), uuid.NewString(), false))

	got, err := store.ListInvoicePayments(context.Background(), &card)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, bank, got[0].SourceAccountID)
	assert.Equal(t, "100.00", got[0].Amount.Decimal().String())
}

func TestEnsureCategory_InsertsWhenMissing(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`select id, name, type from categories where type = \$1`).
		WithArgs("expense", "Groceries").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`insert into categories`).
		WithArgs(sqlmock.AnyArg(), "Groceries", "expense").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := store.EnsureCategory(context.Background(), ledger.Category{Name: "Groceries", Type: ledger.CategoryTypeExpense})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
}
