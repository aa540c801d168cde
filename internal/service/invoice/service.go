// Package invoice composes the billing calculator over stored entries: it builds the
// invoice of a credit card for a cycle and reconciles it against the bank statement.
package invoice

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/reconcile"
)

// MaxHistory bounds History requests.
const MaxHistory = 36

type Repo interface {
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error)
}

// Invoice is the derived view of one billing cycle of one card.
type Invoice struct {
	AccountID uuid.UUID
	Period    string
	Cycle     billing.Cycle
	Total     money.Amount
	// Owed is the amount to pay, i.e. the negated total.
	Owed      money.Amount
	Status    billing.Status
	DaysToDue int
	Entries   []ledger.Entry
}

// Reconciliation compares the amount owed on an invoice with the value on the bank statement.
type Reconciliation struct {
	Invoice Invoice
	Result  reconcile.Result
}

type Service interface {
	Current(ctx context.Context, accountID uuid.UUID, today civil.Date) (Invoice, error)
	Open(ctx context.Context, accountID uuid.UUID, today civil.Date) (Invoice, error)
	ForPeriod(ctx context.Context, accountID uuid.UUID, period string, today civil.Date) (Invoice, error)
	History(ctx context.Context, accountID uuid.UUID, today civil.Date, n int) ([]Invoice, error)
	Reconcile(ctx context.Context, accountID uuid.UUID, period string, today civil.Date, reported decimal.Decimal) (Reconciliation, error)
}

type service struct {
	repo Repo
}

func New(repo Repo) Service { return &service{repo: repo} }

func (s *service) card(ctx context.Context, id uuid.UUID) (ledger.Account, billing.Schedule, error) {
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return ledger.Account{}, billing.Schedule{}, err
	}
	sched, err := billing.ScheduleOf(acc)
	if err != nil {
		return ledger.Account{}, billing.Schedule{}, err
	}
	return acc, sched, nil
}

// Current returns the invoice of the most recently closed cycle.
func (s *service) Current(ctx context.Context, accountID uuid.UUID, today civil.Date) (Invoice, error) {
	acc, sched, err := s.card(ctx, accountID)
	if err != nil {
		return Invoice{}, err
	}
	return s.build(ctx, acc, sched.Current(today), today)
}

// Open returns the invoice of the cycle still accumulating today.
func (s *service) Open(ctx context.Context, accountID uuid.UUID, today civil.Date) (Invoice, error) {
	acc, sched, err := s.card(ctx, accountID)
	if err != nil {
		return Invoice{}, err
	}
	return s.build(ctx, acc, sched.Containing(today), today)
}

func (s *service) ForPeriod(ctx context.Context, accountID uuid.UUID, period string, today civil.Date) (Invoice, error) {
	acc, sched, err := s.card(ctx, accountID)
	if err != nil {
		return Invoice{}, err
	}
	c, err := sched.ForKey(period)
	if err != nil {
		return Invoice{}, err
	}
	return s.build(ctx, acc, c, today)
}

// History returns n consecutive invoices, newest first, ending with the current one.
func (s *service) History(ctx context.Context, accountID uuid.UUID, today civil.Date, n int) ([]Invoice, error) {
	if n < 1 || n > MaxHistory {
		return nil, fmt.Errorf("%w: count must be within 1..%d", errs.ErrInvalid, MaxHistory)
	}
	acc, sched, err := s.card(ctx, accountID)
	if err != nil {
		return nil, err
	}
	newest := sched.Current(today)
	oldest := newest
	for i := 1; i < n; i++ {
		oldest = sched.Prev(oldest)
	}
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{AccountID: &acc.ID, From: &oldest.Start, To: &newest.End})
	if err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, n)
	for c := newest; len(out) < n; c = sched.Prev(c) {
		inv, err := assemble(acc, c, entries, today)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// Reconcile compares the amount owed for period with the invoice value reported by the bank.
func (s *service) Reconcile(ctx context.Context, accountID uuid.UUID, period string, today civil.Date, reported decimal.Decimal) (Reconciliation, error) {
	inv, err := s.ForPeriod(ctx, accountID, period, today)
	if err != nil {
		return Reconciliation{}, err
	}
	res, err := reconcile.CompareAmount(inv.Owed, reported)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconciliation{Invoice: inv, Result: res}, nil
}

func (s *service) build(ctx context.Context, acc ledger.Account, c billing.Cycle, today civil.Date) (Invoice, error) {
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{AccountID: &acc.ID, From: &c.Start, To: &c.End})
	if err != nil {
		return Invoice{}, err
	}
	return assemble(acc, c, entries, today)
}

func assemble(acc ledger.Account, c billing.Cycle, entries []ledger.Entry, today civil.Date) (Invoice, error) {
	a, err := billing.Assign(entries, c, acc.Currency)
	if err != nil {
		return Invoice{}, err
	}
	cls := billing.Classify(a.Total, today, c)
	return Invoice{
		AccountID: acc.ID,
		Period:    c.Key(),
		Cycle:     c,
		Total:     a.Total,
		Owed:      a.Total.Neg(),
		Status:    cls.Status,
		DaysToDue: cls.DaysToDue,
		Entries:   a.Entries,
	}, nil
}
