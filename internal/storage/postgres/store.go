// Package postgres provides a relational store that satisfies the repository and writer
// interfaces used by the services. It runs database/sql on top of a pgx pool through the
// pgx stdlib driver; the schema lives in migrations/ and is applied by Migrate.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store holds a database handle and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string and exposes it as *sql.DB.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{db: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

// NewFromDB wraps an existing handle.
func NewFromDB(db *sql.DB) *Store { return &Store{db: db} }

// Close releases the handle and the underlying pool.
func (s *Store) Close() {
	_ = s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Migrate applies the embedded schema files in name order. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

func dateArg(d civil.Date) time.Time { return d.In(time.UTC) }

func minor(a money.Amount) (int64, error) {
	units, ok := a.MinorUnits()
	if !ok {
		return 0, fmt.Errorf("%w: amount %s out of range", errs.ErrInvalid, a)
	}
	return units, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Accounts ---

const accountColumns = `id, name, kind, currency, closing_day, due_day`

type scanner interface{ Scan(dest ...any) error }

func scanAccount(row scanner) (ledger.Account, error) {
	var a ledger.Account
	var closing, due sql.NullInt32
	if err := row.Scan(&a.ID, &a.Name, &a.Kind, &a.Currency, &closing, &due); err != nil {
		return ledger.Account{}, err
	}
	if closing.Valid {
		n := int(closing.Int32)
		a.ClosingDay = &n
	}
	if due.Valid {
		n := int(due.Int32)
		a.DueDay = &n
	}
	a.Currency = strings.TrimSpace(a.Currency)
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `select `+accountColumns+` from accounts order by name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `select `+accountColumns+` from accounts where id = $1`, id))
	if err != nil {
		return ledger.Account{}, notFound(err)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.db.ExecContext(ctx, `
		insert into accounts (id, name, kind, currency, closing_day, due_day)
		values ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Name, string(a.Kind), strings.ToUpper(a.Currency), a.ClosingDay, a.DueDay)
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	return a, updateAccount(ctx, s.db, a)
}

func updateAccount(ctx context.Context, q querier, a ledger.Account) error {
	res, err := q.ExecContext(ctx, `
		update accounts set name = $1, kind = $2, closing_day = $3, due_day = $4
		where id = $5
	`, a.Name, string(a.Kind), a.ClosingDay, a.DueDay, a.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

// DeleteAccount removes the account; its entries go with it through the foreign key cascade.
func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `delete from accounts where id = $1`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// --- Categories ---

func (s *Store) ListCategories(ctx context.Context) ([]ledger.Category, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, type from categories order by type, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Category, 0)
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (ledger.Category, error) {
	var c ledger.Category
	err := s.db.QueryRowContext(ctx, `select id, name, type from categories where id = $1`, id).Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return ledger.Category{}, notFound(err)
	}
	return c, nil
}

// CategoryByName resolves a category by case-insensitive name and type.
func (s *Store) CategoryByName(ctx context.Context, name string, typ ledger.CategoryType) (ledger.Category, error) {
	var c ledger.Category
	err := s.db.QueryRowContext(ctx, `
		select id, name, type from categories where type = $1 and lower(name) = lower($2)
	`, string(typ), name).Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return ledger.Category{}, notFound(err)
	}
	return c, nil
}

// EnsureCategory returns the existing category with the same name and type, creating it if missing.
func (s *Store) EnsureCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	existing, err := s.CategoryByName(ctx, c.Name, c.Type)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return ledger.Category{}, err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, err := s.db.ExecContext(ctx, `insert into categories (id, name, type) values ($1, $2, $3)`, c.ID, c.Name, string(c.Type)); err != nil {
		return ledger.Category{}, err
	}
	return c, nil
}

// --- Entries ---

const entryColumns = `id, date, description, amount_minor, currency, account_id, category_id, reconciled, transfer_id, invoice_payment_id, period_key`

func scanEntry(row scanner) (ledger.Entry, error) {
	var e ledger.Entry
	var date time.Time
	var units int64
	var curr string
	var category, transfer, payment uuid.NullUUID
	if err := row.Scan(&e.ID, &date, &e.Description, &units, &curr, &e.AccountID, &category, &e.Reconciled, &transfer, &payment, &e.PeriodKey); err != nil {
		return ledger.Entry{}, err
	}
	amt, err := money.NewAmountFromMinorUnits(strings.TrimSpace(curr), units)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("entry %s amount: %w", e.ID, err)
	}
	e.Date = civil.DateOf(date)
	e.Amount = amt
	e.CategoryID = nullable(category)
	e.TransferID = nullable(transfer)
	e.InvoicePaymentID = nullable(payment)
	return e, nil
}

func nullable(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// ListEntries returns entries matching f ordered by (date, id).
func (s *Store) ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AccountID != nil {
		add("account_id = $%d", *f.AccountID)
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.From != nil {
		add("date >= $%d", dateArg(*f.From))
	}
	if f.To != nil {
		add("date <= $%d", dateArg(*f.To))
	}
	q := `select ` + entryColumns + ` from entries`
	if len(where) > 0 {
		q += ` where ` + strings.Join(where, " and ")
	}
	q += ` order by date, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `select `+entryColumns+` from entries where id = $1`, id))
	if err != nil {
		return ledger.Entry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	if err := createEntry(ctx, s.db, e); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	if err := updateEntry(ctx, s.db, e); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, "entries", id)
}

func createEntry(ctx context.Context, q querier, e ledger.Entry) error {
	units, err := minor(e.Amount)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		insert into entries (`+entryColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, dateArg(e.Date), e.Description, units, e.Amount.Curr().Code(), e.AccountID, e.CategoryID, e.Reconciled, e.TransferID, e.InvoicePaymentID, e.PeriodKey)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func updateEntry(ctx context.Context, q querier, e ledger.Entry) error {
	units, err := minor(e.Amount)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		update entries
		set date = $1, description = $2, amount_minor = $3, currency = $4, account_id = $5,
		    category_id = $6, reconciled = $7, transfer_id = $8, invoice_payment_id = $9, period_key = $10
		where id = $11
	`, dateArg(e.Date), e.Description, units, e.Amount.Curr().Code(), e.AccountID, e.CategoryID, e.Reconciled, e.TransferID, e.InvoicePaymentID, e.PeriodKey, e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return affected(res)
}

// deleteByID deletes one row from a fixed table name.
func deleteByID(ctx context.Context, q querier, table string, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `delete from `+table+` where id = $1`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// --- Transfers and invoice payments ---

// Both relationship tables share one shape; pairRow converts between them.
type pairRow struct {
	ID, Source, Dest, Origin, Destination uuid.UUID
	Date                                  civil.Date
	Description                           string
	Amount                                money.Amount
	Reconciled                            bool
}

const pairColumns = `id, date, description, amount_minor, currency, source_account_id, destination_account_id, origin_entry_id, destination_entry_id, reconciled`

func scanPair(row scanner) (pairRow, error) {
	var p pairRow
	var date time.Time
	var units int64
	var curr string
	if err := row.Scan(&p.ID, &date, &p.Description, &units, &curr, &p.Source, &p.Dest, &p.Origin, &p.Destination, &p.Reconciled); err != nil {
		return pairRow{}, err
	}
	amt, err := money.NewAmountFromMinorUnits(strings.TrimSpace(curr), units)
	if err != nil {
		return pairRow{}, err
	}
	p.Date = civil.DateOf(date)
	p.Amount = amt
	return p, nil
}

func listPairs(ctx context.Context, q querier, table string, accountID *uuid.UUID) ([]pairRow, error) {
	query := `select ` + pairColumns + ` from ` + table
	args := []any{}
	if accountID != nil {
		query += ` where source_account_id = $1 or destination_account_id = $1`
		args = append(args, *accountID)
	}
	query += ` order by date, id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]pairRow, 0)
	for rows.Next() {
		p, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func getPair(ctx context.Context, q querier, table string, id uuid.UUID) (pairRow, error) {
	p, err := scanPair(q.QueryRowContext(ctx, `select `+pairColumns+` from `+table+` where id = $1`, id))
	if err != nil {
		return pairRow{}, notFound(err)
	}
	return p, nil
}

func createPair(ctx context.Context, q querier, table string, p pairRow) error {
	units, err := minor(p.Amount)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		insert into `+table+` (`+pairColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, dateArg(p.Date), p.Description, units, p.Amount.Curr().Code(), p.Source, p.Dest, p.Origin, p.Destination, p.Reconciled)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func updatePair(ctx context.Context, q querier, table string, p pairRow) error {
	units, err := minor(p.Amount)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		update `+table+`
		set date = $1, description = $2, amount_minor = $3, currency = $4,
		    source_account_id = $5, destination_account_id = $6, reconciled = $7
		where id = $8
	`, dateArg(p.Date), p.Description, units, p.Amount.Curr().Code(), p.Source, p.Dest, p.Reconciled, p.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return affected(res)
}

func fromTransfer(t ledger.Transfer) pairRow {
	return pairRow{ID: t.ID, Source: t.SourceAccountID, Dest: t.DestinationAccountID, Origin: t.OriginEntryID, Destination: t.DestinationEntryID,
		Date: t.Date, Description: t.Description, Amount: t.Amount, Reconciled: t.Reconciled}
}

func (p pairRow) transfer() ledger.Transfer {
	return ledger.Transfer{ID: p.ID, Date: p.Date, Description: p.Description, Amount: p.Amount,
		SourceAccountID: p.Source, DestinationAccountID: p.Dest, OriginEntryID: p.Origin, DestinationEntryID: p.Destination, Reconciled: p.Reconciled}
}

func fromPayment(ip ledger.InvoicePayment) pairRow {
	return pairRow{ID: ip.ID, Source: ip.SourceAccountID, Dest: ip.DestinationAccountID, Origin: ip.OriginEntryID, Destination: ip.DestinationEntryID,
		Date: ip.Date, Description: ip.Description, Amount: ip.Amount, Reconciled: ip.Reconciled}
}

func (p pairRow) payment() ledger.InvoicePayment {
	return ledger.InvoicePayment{ID: p.ID, Date: p.Date, Description: p.Description, Amount: p.Amount,
		SourceAccountID: p.Source, DestinationAccountID: p.Dest, OriginEntryID: p.Origin, DestinationEntryID: p.Destination, Reconciled: p.Reconciled}
}

const (
	transfersTable = "transfers"
	paymentsTable  = "invoice_payments"
)

func (s *Store) ListTransfers(ctx context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error) {
	rows, err := listPairs(ctx, s.db, transfersTable, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Transfer, len(rows))
	for i, r := range rows {
		out[i] = r.transfer()
	}
	return out, nil
}

func (s *Store) GetTransfer(ctx context.Context, id uuid.UUID) (ledger.Transfer, error) {
	p, err := getPair(ctx, s.db, transfersTable, id)
	if err != nil {
		return ledger.Transfer{}, err
	}
	return p.transfer(), nil
}

func (s *Store) CreateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	return t, createPair(ctx, s.db, transfersTable, fromTransfer(t))
}

func (s *Store) UpdateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	return t, updatePair(ctx, s.db, transfersTable, fromTransfer(t))
}

func (s *Store) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, transfersTable, id)
}

func (s *Store) ListInvoicePayments(ctx context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error) {
	rows, err := listPairs(ctx, s.db, paymentsTable, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.InvoicePayment, len(rows))
	for i, r := range rows {
		out[i] = r.payment()
	}
	return out, nil
}

func (s *Store) GetInvoicePayment(ctx context.Context, id uuid.UUID) (ledger.InvoicePayment, error) {
	p, err := getPair(ctx, s.db, paymentsTable, id)
	if err != nil {
		return ledger.InvoicePayment{}, err
	}
	return p.payment(), nil
}

func (s *Store) CreateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, createPair(ctx, s.db, paymentsTable, fromPayment(p))
}

func (s *Store) UpdateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, updatePair(ctx, s.db, paymentsTable, fromPayment(p))
}

func (s *Store) DeleteInvoicePayment(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, paymentsTable, id)
}

// --- Transactions ---

// BeginTx starts a transaction used by the paired-posting writer and account updates.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx wraps a *sql.Tx and implements the writes issued for one pairing or account re-index.
type Tx struct{ tx *sql.Tx }

func (t *Tx) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	return a, updateAccount(ctx, t.tx, a)
}

func (t *Tx) CreateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	return e, createEntry(ctx, t.tx, e)
}

func (t *Tx) UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	return e, updateEntry(ctx, t.tx, e)
}

func (t *Tx) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, t.tx, "entries", id)
}

func (t *Tx) CreateTransfer(ctx context.Context, tr ledger.Transfer) (ledger.Transfer, error) {
	return tr, createPair(ctx, t.tx, transfersTable, fromTransfer(tr))
}

func (t *Tx) UpdateTransfer(ctx context.Context, tr ledger.Transfer) (ledger.Transfer, error) {
	return tr, updatePair(ctx, t.tx, transfersTable, fromTransfer(tr))
}

func (t *Tx) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, t.tx, transfersTable, id)
}

func (t *Tx) CreateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, createPair(ctx, t.tx, paymentsTable, fromPayment(p))
}

func (t *Tx) UpdateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, updatePair(ctx, t.tx, paymentsTable, fromPayment(p))
}

func (t *Tx) DeleteInvoicePayment(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, t.tx, paymentsTable, id)
}

func (t *Tx) Commit(context.Context) error { return t.tx.Commit() }
func (t *Tx) Rollback(context.Context) error { return t.tx.Rollback() }
