// Package entry implements single ledger entries: validation, period-key stamping and
// the rule that legs of a transfer or invoice payment are never touched on their own.
package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	GetCategory(ctx context.Context, id uuid.UUID) (ledger.Category, error)
	ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}

// Service exposes validation, creation and maintenance of single entries.
type Service interface {
	ValidateEntry(ctx context.Context, e ledger.Entry) (ledger.Account, error)
	Create(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
	List(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error)
	Update(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	SetReconciled(ctx context.Context, id uuid.UUID, reconciled bool) (ledger.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// ValidateEntry checks a user-supplied entry and returns the account it posts to.
func (s *service) ValidateEntry(ctx context.Context, e ledger.Entry) (ledger.Account, error) {
	if e.AccountID == uuid.Nil {
		return ledger.Account{}, fmt.Errorf("%w: account_id is required", errs.ErrInvalid)
	}
	if e.Date == (civil.Date{}) || !e.Date.IsValid() {
		return ledger.Account{}, fmt.Errorf("%w: date is required", errs.ErrInvalid)
	}
	if strings.TrimSpace(e.Description) == "" {
		return ledger.Account{}, fmt.Errorf("%w: description is required", errs.ErrInvalid)
	}
	if e.Amount.IsZero() {
		return ledger.Account{}, fmt.Errorf("%w: amount must be non-zero", errs.ErrInvalid)
	}
	acc, err := s.repo.GetAccount(ctx, e.AccountID)
	if errors.Is(err, errs.ErrNotFound) {
		return ledger.Account{}, fmt.Errorf("%w: account %s not found", errs.ErrInvalid, e.AccountID)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	if curr := e.Amount.Curr().Code(); curr != acc.Currency {
		return ledger.Account{}, fmt.Errorf("%w: amount currency %s does not match account currency %s", errs.ErrInvalid, curr, acc.Currency)
	}
	if e.CategoryID != nil {
		cat, err := s.repo.GetCategory(ctx, *e.CategoryID)
		if errors.Is(err, errs.ErrNotFound) {
			return ledger.Account{}, fmt.Errorf("%w: category %s not found", errs.ErrInvalid, *e.CategoryID)
		}
		if err != nil {
			return ledger.Account{}, err
		}
		if cat.Type == ledger.CategoryTypeSystem {
			return ledger.Account{}, fmt.Errorf("%w: category %q is reserved for transfers and invoice payments", errs.ErrInvalid, cat.Name)
		}
	}
	return acc, nil
}

func (s *service) Create(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	acc, err := s.ValidateEntry(ctx, e)
	if err != nil {
		return ledger.Entry{}, err
	}
	e.ID = uuid.New()
	e.Description = strings.TrimSpace(e.Description)
	e.TransferID, e.InvoicePaymentID = nil, nil
	e.PeriodKey = billing.PeriodKey(acc, e.Date)
	return s.writer.CreateEntry(ctx, e)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	if id == uuid.Nil {
		return ledger.Entry{}, errs.ErrInvalid
	}
	return s.repo.GetEntry(ctx, id)
}

func (s *service) List(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: from is after to", errs.ErrInvalid)
	}
	return s.repo.ListEntries(ctx, f)
}

// Update replaces the editable fields of a single entry.
func (s *service) Update(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	orig, err := s.single(ctx, e.ID)
	if err != nil {
		return ledger.Entry{}, err
	}
	acc, err := s.ValidateEntry(ctx, e)
	if err != nil {
		return ledger.Entry{}, err
	}
	orig.Date = e.Date
	orig.Description = strings.TrimSpace(e.Description)
	orig.Amount = e.Amount
	orig.AccountID = e.AccountID
	orig.CategoryID = e.CategoryID
	orig.Reconciled = e.Reconciled
	orig.PeriodKey = billing.PeriodKey(acc, e.Date)
	return s.writer.UpdateEntry(ctx, orig)
}

func (s *service) SetReconciled(ctx context.Context, id uuid.UUID, reconciled bool) (ledger.Entry, error) {
	e, err := s.single(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	e.Reconciled = reconciled
	return s.writer.UpdateEntry(ctx, e)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.single(ctx, id); err != nil {
		return err
	}
	return s.writer.DeleteEntry(ctx, id)
}

// single loads an entry and refuses paired legs.
func (s *service) single(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	if id == uuid.Nil {
		return ledger.Entry{}, errs.ErrInvalid
	}
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	switch {
	case e.TransferID != nil:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s belongs to transfer %s", errs.ErrPairedLeg, id, *e.TransferID)
	case e.InvoicePaymentID != nil:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s belongs to invoice payment %s", errs.ErrPairedLeg, id, *e.InvoicePaymentID)
	}
	return e, nil
}
