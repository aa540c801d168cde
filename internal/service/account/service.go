// Package account implements the account service rules: kind-specific billing configuration,
// immutable currency, cascade delete guarded by pairings, balances and balance reconciliation.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/reconcile"
)

type Repo interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error)
	ListTransfers(ctx context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error)
	ListInvoicePayments(ctx context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error)
}

type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
}

type Service interface {
	ValidateCreate(a ledger.Account) error
	Create(ctx context.Context, a ledger.Account) (ledger.Account, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Update(ctx context.Context, a ledger.Account) (ledger.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Balance(ctx context.Context, id uuid.UUID, asOf *civil.Date) (money.Amount, error)
	ReconcileBalance(ctx context.Context, id uuid.UUID, asOf civil.Date, reported decimal.Decimal) (reconcile.Result, error)
}

// Tx is the slice of a store transaction needed to change billing configuration
// and re-stamp period keys together.
type Tx interface {
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginFunc opens a transaction.
type BeginFunc func(ctx context.Context) (Tx, error)

// Option configures the service.
type Option func(*service)

// WithLogger sets the logger used for period-key re-index reports.
func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

// WithTx makes billing changes and their period-key re-index atomic.
// Without it a failed re-index is undone by restoring the previous keys and configuration.
func WithTx(b BeginFunc) Option { return func(s *service) { s.begin = b } }

type service struct {
	repo   Repo
	writer Writer
	begin  BeginFunc
	log    *slog.Logger
}

type entryUpdater interface {
	UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
}

func New(repo Repo, writer Writer, opts ...Option) Service {
	s := &service{repo: repo, writer: writer, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) ValidateCreate(a ledger.Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: invalid account kind %q", errs.ErrInvalid, a.Kind)
	}
	if _, err := money.ParseCurr(a.Currency); err != nil {
		return fmt.Errorf("%w: currency %q: %v", errs.ErrInvalid, a.Currency, err)
	}
	if a.IsCreditCard() {
		if a.ClosingDay == nil || a.DueDay == nil {
			return fmt.Errorf("%w: credit cards require closing_day and due_day", errs.ErrInvalidConfiguration)
		}
		if _, err := billing.NewSchedule(*a.ClosingDay, *a.DueDay); err != nil {
			return err
		}
		return nil
	}
	if a.ClosingDay != nil || a.DueDay != nil {
		return fmt.Errorf("%w: closing_day and due_day apply to credit cards only", errs.ErrInvalidConfiguration)
	}
	return nil
}

func normalize(a ledger.Account) ledger.Account {
	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	return a
}

func (s *service) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	a = normalize(a)
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	a.ID = uuid.New()
	return s.writer.CreateAccount(ctx, a)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Account, error) {
	if id == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	return s.repo.GetAccount(ctx, id)
}

func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Update persists name, kind and billing configuration. Currency is immutable.
// A change to the billing configuration re-stamps the period key of every entry of the account.
func (s *service) Update(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	current, err := s.Get(ctx, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	a = normalize(a)
	if a.Currency == "" {
		a.Currency = current.Currency
	}
	if a.Currency != current.Currency {
		return ledger.Account{}, fmt.Errorf("%w: currency is immutable", errs.ErrInvalid)
	}
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	if a.Kind != current.Kind {
		payments, err := s.repo.ListInvoicePayments(ctx, &a.ID)
		if err != nil {
			return ledger.Account{}, err
		}
		if len(payments) > 0 {
			return ledger.Account{}, fmt.Errorf("%w: kind cannot change while invoice payments reference the account", errs.ErrConflict)
		}
	}
	if !billingChanged(current, a) {
		return s.writer.UpdateAccount(ctx, a)
	}
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{AccountID: &a.ID})
	if err != nil {
		return ledger.Account{}, err
	}
	if s.begin != nil {
		return s.updateTx(ctx, a, entries)
	}
	return s.updateCompensated(ctx, current, a, entries)
}

func billingChanged(a, b ledger.Account) bool {
	return a.Kind != b.Kind || !sameDay(a.ClosingDay, b.ClosingDay) || !sameDay(a.DueDay, b.DueDay)
}

func sameDay(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *service) updateTx(ctx context.Context, a ledger.Account, entries []ledger.Entry) (ledger.Account, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	updated, err := tx.UpdateAccount(ctx, a)
	if err != nil {
		return ledger.Account{}, err
	}
	if _, err := restamp(ctx, tx, updated, entries); err != nil {
		return ledger.Account{}, fmt.Errorf("reindex period keys: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Account{}, fmt.Errorf("commit: %w", err)
	}
	s.logReindex(updated, entries)
	return updated, nil
}

// updateCompensated writes the account and then its entries one by one. When an entry
// write fails the re-stamped entries get their previous keys back and the account its
// previous configuration.
func (s *service) updateCompensated(ctx context.Context, current, a ledger.Account, entries []ledger.Entry) (ledger.Account, error) {
	updated, err := s.writer.UpdateAccount(ctx, a)
	if err != nil {
		return ledger.Account{}, err
	}
	done, err := restamp(ctx, s.writer, updated, entries)
	if err == nil {
		s.logReindex(updated, entries)
		return updated, nil
	}
	var undo []error
	for i := len(done) - 1; i >= 0; i-- {
		if _, uerr := s.writer.UpdateEntry(ctx, done[i]); uerr != nil {
			undo = append(undo, fmt.Errorf("entry %s: %w", done[i].ID, uerr))
		}
	}
	if _, uerr := s.writer.UpdateAccount(ctx, current); uerr != nil {
		undo = append(undo, fmt.Errorf("account %s: %w", current.ID, uerr))
	}
	if len(undo) > 0 {
		s.log.Error("period key reindex left partial state",
			"account_id", a.ID, "restamped", len(done), "err", err, "undo_err", errors.Join(undo...))
	}
	return ledger.Account{}, fmt.Errorf("reindex period keys: %w", err)
}

// restamp writes the period key a implies for every entry whose stored key differs.
// It returns the previous state of each entry written before any failure.
func restamp(ctx context.Context, w entryUpdater, a ledger.Account, entries []ledger.Entry) ([]ledger.Entry, error) {
	var done []ledger.Entry
	for _, e := range entries {
		key := billing.PeriodKey(a, e.Date)
		if key == e.PeriodKey {
			continue
		}
		next := e
		next.PeriodKey = key
		if _, err := w.UpdateEntry(ctx, next); err != nil {
			return done, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		done = append(done, e)
	}
	return done, nil
}

func (s *service) logReindex(a ledger.Account, entries []ledger.Entry) {
	changed := 0
	for _, e := range entries {
		if billing.PeriodKey(a, e.Date) != e.PeriodKey {
			changed++
		}
	}
	s.log.Info("period keys reindexed", "account_id", a.ID, "entries", len(entries), "changed", changed)
}

// Delete removes the account and its entries. Accounts taking part in a transfer or
// invoice payment are refused: cascading would leave the sibling leg orphaned.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	transfers, err := s.repo.ListTransfers(ctx, &id)
	if err != nil {
		return err
	}
	payments, err := s.repo.ListInvoicePayments(ctx, &id)
	if err != nil {
		return err
	}
	if n := len(transfers) + len(payments); n > 0 {
		return fmt.Errorf("%w: account %s takes part in %d transfers or invoice payments", errs.ErrPairedLeg, id, n)
	}
	return s.writer.DeleteAccount(ctx, id)
}

// Balance sums the account's entries up to asOf (inclusive); nil means all entries.
func (s *service) Balance(ctx context.Context, id uuid.UUID, asOf *civil.Date) (money.Amount, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return money.Amount{}, err
	}
	net, err := money.NewAmountFromMinorUnits(acc.Currency, 0)
	if err != nil {
		return money.Amount{}, err
	}
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{AccountID: &id, To: asOf})
	if err != nil {
		return money.Amount{}, err
	}
	for _, e := range entries {
		if net, err = net.Add(e.Amount); err != nil {
			return money.Amount{}, fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return net, nil
}

// ReconcileBalance compares the balance as of asOf with the balance stated by the bank.
func (s *service) ReconcileBalance(ctx context.Context, id uuid.UUID, asOf civil.Date, reported decimal.Decimal) (reconcile.Result, error) {
	bal, err := s.Balance(ctx, id, &asOf)
	if err != nil {
		return reconcile.Result{}, err
	}
	return reconcile.CompareAmount(bal, reported)
}
