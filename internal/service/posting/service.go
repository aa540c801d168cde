// Package posting writes paired postings: a transfer or an invoice payment is two ledger
// entries of opposite sign plus a relationship record, created, edited and deleted together.
package posting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// Kind distinguishes the two pairing flavours.
type Kind string

const (
	KindTransfer       Kind = "transfer"
	KindInvoicePayment Kind = "invoice_payment"
)

// Repo defines the reads needed by the writer.
type Repo interface {
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	CategoryByName(ctx context.Context, name string, typ ledger.CategoryType) (ledger.Category, error)
	GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (ledger.Transfer, error)
	ListTransfers(ctx context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error)
	GetInvoicePayment(ctx context.Context, id uuid.UUID) (ledger.InvoicePayment, error)
	ListInvoicePayments(ctx context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error)
}

// Writer defines the writes issued for one pairing.
type Writer interface {
	CreateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	UpdateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	CreateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error)
	UpdateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error)
	DeleteTransfer(ctx context.Context, id uuid.UUID) error
	CreateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error)
	UpdateInvoicePayment(ctx context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error)
	DeleteInvoicePayment(ctx context.Context, id uuid.UUID) error
}

//go:generate mockgen -destination=mock_posting/mocks.go -package=mock_posting github.com/tinoosan/finledger/internal/service/posting Tx,Writer

// Tx is a Writer whose writes become visible together on Commit.
type Tx interface {
	Writer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginFunc opens a transaction on the underlying store.
type BeginFunc func(ctx context.Context) (Tx, error)

// Request carries the user-editable fields of a transfer or invoice payment.
// Amount is the positive magnitude moved from source to destination.
type Request struct {
	Date                 civil.Date
	Description          string
	Amount               money.Amount
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Reconciled           bool
}

// Service exposes the paired-posting operations.
type Service interface {
	CreateTransfer(ctx context.Context, req Request) (ledger.Transfer, error)
	UpdateTransfer(ctx context.Context, id uuid.UUID, req Request) (ledger.Transfer, error)
	DeleteTransfer(ctx context.Context, id uuid.UUID) error
	GetTransfer(ctx context.Context, id uuid.UUID) (ledger.Transfer, error)
	ListTransfers(ctx context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error)

	CreateInvoicePayment(ctx context.Context, req Request) (ledger.InvoicePayment, error)
	UpdateInvoicePayment(ctx context.Context, id uuid.UUID, req Request) (ledger.InvoicePayment, error)
	DeleteInvoicePayment(ctx context.Context, id uuid.UUID) error
	GetInvoicePayment(ctx context.Context, id uuid.UUID) (ledger.InvoicePayment, error)
	ListInvoicePayments(ctx context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error)
}

// Option configures the service.
type Option func(*service)

// WithTx makes every pairing write go through a single store transaction.
func WithTx(begin BeginFunc) Option { return func(s *service) { s.begin = begin } }

// WithLogger sets the logger used to report compensation failures.
func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

type service struct {
	repo   Repo
	writer Writer
	begin  BeginFunc
	log    *slog.Logger
}

// New builds the writer. Without WithTx it writes sequentially and compensates on failure.
func New(repo Repo, writer Writer, opts ...Option) Service {
	s := &service{repo: repo, writer: writer, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(s)
	}
	return s
}

// pair is the kind-independent shape of a transfer or invoice payment.
type pair struct {
	kind     Kind
	id       uuid.UUID
	req      Request
	originID uuid.UUID
	destID   uuid.UUID
}

func (p pair) transfer() ledger.Transfer {
	return ledger.Transfer{
		ID: p.id, Date: p.req.Date, Description: p.req.Description, Amount: p.req.Amount,
		SourceAccountID: p.req.SourceAccountID, DestinationAccountID: p.req.DestinationAccountID,
		OriginEntryID: p.originID, DestinationEntryID: p.destID, Reconciled: p.req.Reconciled,
	}
}

func (p pair) payment() ledger.InvoicePayment {
	return ledger.InvoicePayment{
		ID: p.id, Date: p.req.Date, Description: p.req.Description, Amount: p.req.Amount,
		SourceAccountID: p.req.SourceAccountID, DestinationAccountID: p.req.DestinationAccountID,
		OriginEntryID: p.originID, DestinationEntryID: p.destID, Reconciled: p.req.Reconciled,
	}
}

func pairOfTransfer(t ledger.Transfer) pair {
	return pair{kind: KindTransfer, id: t.ID, originID: t.OriginEntryID, destID: t.DestinationEntryID, req: Request{
		Date: t.Date, Description: t.Description, Amount: t.Amount,
		SourceAccountID: t.SourceAccountID, DestinationAccountID: t.DestinationAccountID, Reconciled: t.Reconciled,
	}}
}

func pairOfPayment(p ledger.InvoicePayment) pair {
	return pair{kind: KindInvoicePayment, id: p.ID, originID: p.OriginEntryID, destID: p.DestinationEntryID, req: Request{
		Date: p.Date, Description: p.Description, Amount: p.Amount,
		SourceAccountID: p.SourceAccountID, DestinationAccountID: p.DestinationAccountID, Reconciled: p.Reconciled,
	}}
}

func categoryName(k Kind) string {
	if k == KindInvoicePayment {
		return ledger.CategoryNameInvoicePayment
	}
	return ledger.CategoryNameTransfer
}

// --- Transfers ---

func (s *service) CreateTransfer(ctx context.Context, req Request) (ledger.Transfer, error) {
	p, err := s.create(ctx, KindTransfer, req)
	if err != nil {
		return ledger.Transfer{}, err
	}
	return p.transfer(), nil
}

func (s *service) UpdateTransfer(ctx context.Context, id uuid.UUID, req Request) (ledger.Transfer, error) {
	old, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return ledger.Transfer{}, err
	}
	p, err := s.update(ctx, pairOfTransfer(old), req)
	if err != nil {
		return ledger.Transfer{}, err
	}
	return p.transfer(), nil
}

func (s *service) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	old, err := s.repo.GetTransfer(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, pairOfTransfer(old))
}

func (s *service) GetTransfer(ctx context.Context, id uuid.UUID) (ledger.Transfer, error) {
	return s.repo.GetTransfer(ctx, id)
}

func (s *service) ListTransfers(ctx context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error) {
	return s.repo.ListTransfers(ctx, accountID)
}

// --- Invoice payments ---

func (s *service) CreateInvoicePayment(ctx context.Context, req Request) (ledger.InvoicePayment, error) {
	p, err := s.create(ctx, KindInvoicePayment, req)
	if err != nil {
		return ledger.InvoicePayment{}, err
	}
	return p.payment(), nil
}

func (s *service) UpdateInvoicePayment(ctx context.Context, id uuid.UUID, req Request) (ledger.InvoicePayment, error) {
	old, err := s.repo.GetInvoicePayment(ctx, id)
	if err != nil {
		return ledger.InvoicePayment{}, err
	}
	p, err := s.update(ctx, pairOfPayment(old), req)
	if err != nil {
		return ledger.InvoicePayment{}, err
	}
	return p.payment(), nil
}

func (s *service) DeleteInvoicePayment(ctx context.Context, id uuid.UUID) error {
	old, err := s.repo.GetInvoicePayment(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, pairOfPayment(old))
}

func (s *service) GetInvoicePayment(ctx context.Context, id uuid.UUID) (ledger.InvoicePayment, error) {
	return s.repo.GetInvoicePayment(ctx, id)
}

func (s *service) ListInvoicePayments(ctx context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error) {
	return s.repo.ListInvoicePayments(ctx, accountID)
}

// --- Validation ---

// accounts validates req for kind and returns the source and destination accounts.
func (s *service) accounts(ctx context.Context, kind Kind, req Request) (ledger.Account, ledger.Account, error) {
	if req.Date == (civil.Date{}) || !req.Date.IsValid() {
		return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: date is required", errs.ErrInvalid)
	}
	if req.SourceAccountID == uuid.Nil || req.DestinationAccountID == uuid.Nil {
		return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: source and destination accounts are required", errs.ErrInvalid)
	}
	if req.SourceAccountID == req.DestinationAccountID {
		return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: source and destination must differ", errs.ErrInvalid)
	}
	if req.Amount.Sign() <= 0 {
		return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalid)
	}
	src, err := s.account(ctx, "source", req.SourceAccountID)
	if err != nil {
		return ledger.Account{}, ledger.Account{}, err
	}
	dst, err := s.account(ctx, "destination", req.DestinationAccountID)
	if err != nil {
		return ledger.Account{}, ledger.Account{}, err
	}
	curr := req.Amount.Curr().Code()
	if src.Currency != curr || dst.Currency != curr {
		return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: amount currency %s does not match accounts", errs.ErrInvalid, curr)
	}
	if kind == KindInvoicePayment {
		if !dst.IsCreditCard() {
			return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: destination must be a credit card", errs.ErrInvalid)
		}
		if src.IsCreditCard() {
			return ledger.Account{}, ledger.Account{}, fmt.Errorf("%w: source must not be a credit card", errs.ErrInvalid)
		}
	}
	return src, dst, nil
}

func (s *service) account(ctx context.Context, role string, id uuid.UUID) (ledger.Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return ledger.Account{}, fmt.Errorf("%w: %s account %s not found", errs.ErrInvalid, role, id)
	}
	return a, err
}

// systemCategory resolves the reserved category for kind.
func (s *service) systemCategory(ctx context.Context, kind Kind) (ledger.Category, error) {
	name := categoryName(kind)
	c, err := s.repo.CategoryByName(ctx, name, ledger.CategoryTypeSystem)
	if errors.Is(err, errs.ErrNotFound) {
		return ledger.Category{}, fmt.Errorf("%w: system category %q", errs.ErrConfigurationMissing, name)
	}
	return c, err
}

// legs builds the origin (negative) and destination (positive) entries of p.
func legs(p pair, src, dst ledger.Account, categoryID *uuid.UUID) (ledger.Entry, ledger.Entry) {
	origin := ledger.Entry{
		ID: p.originID, Date: p.req.Date, Description: p.req.Description, Amount: p.req.Amount.Neg(),
		AccountID: src.ID, CategoryID: categoryID, Reconciled: p.req.Reconciled,
		PeriodKey: billing.PeriodKey(src, p.req.Date),
	}
	dest := ledger.Entry{
		ID: p.destID, Date: p.req.Date, Description: p.req.Description, Amount: p.req.Amount,
		AccountID: dst.ID, CategoryID: categoryID, Reconciled: p.req.Reconciled,
		PeriodKey: billing.PeriodKey(dst, p.req.Date),
	}
	id := p.id
	if p.kind == KindInvoicePayment {
		origin.InvoicePaymentID, dest.InvoicePaymentID = &id, &id
	} else {
		origin.TransferID, dest.TransferID = &id, &id
	}
	return origin, dest
}

// --- Writes ---

func (s *service) create(ctx context.Context, kind Kind, req Request) (pair, error) {
	src, dst, err := s.accounts(ctx, kind, req)
	if err != nil {
		return pair{}, err
	}
	cat, err := s.systemCategory(ctx, kind)
	if err != nil {
		return pair{}, err
	}
	p := pair{kind: kind, id: uuid.New(), req: req, originID: uuid.New(), destID: uuid.New()}
	origin, dest := legs(p, src, dst, &cat.ID)

	// Both legs are written before the relationship record.
	steps := []step{
		{id: origin.ID,
			do:   func(ctx context.Context, w Writer) error { _, err := w.CreateEntry(ctx, origin); return err },
			undo: func(ctx context.Context, w Writer) error { return w.DeleteEntry(ctx, origin.ID) }},
		{id: dest.ID,
			do:   func(ctx context.Context, w Writer) error { _, err := w.CreateEntry(ctx, dest); return err },
			undo: func(ctx context.Context, w Writer) error { return w.DeleteEntry(ctx, dest.ID) }},
		{id: p.id,
			do:   func(ctx context.Context, w Writer) error { return createRecord(ctx, w, p) },
			undo: func(ctx context.Context, w Writer) error { return deleteRecord(ctx, w, p) }},
	}
	if err := s.run(ctx, kind, "create", p.id, steps); err != nil {
		return pair{}, err
	}
	return p, nil
}

func (s *service) update(ctx context.Context, old pair, req Request) (pair, error) {
	src, dst, err := s.accounts(ctx, old.kind, req)
	if err != nil {
		return pair{}, err
	}
	oldOrigin, err := s.repo.GetEntry(ctx, old.originID)
	if err != nil {
		return pair{}, fmt.Errorf("origin leg %s: %w", old.originID, err)
	}
	oldDest, err := s.repo.GetEntry(ctx, old.destID)
	if err != nil {
		return pair{}, fmt.Errorf("destination leg %s: %w", old.destID, err)
	}
	categoryID := oldOrigin.CategoryID
	if categoryID == nil {
		cat, err := s.systemCategory(ctx, old.kind)
		if err != nil {
			return pair{}, err
		}
		categoryID = &cat.ID
	}
	p := old
	p.req = req
	origin, dest := legs(p, src, dst, categoryID)

	steps := []step{
		{id: origin.ID,
			do:   func(ctx context.Context, w Writer) error { _, err := w.UpdateEntry(ctx, origin); return err },
			undo: func(ctx context.Context, w Writer) error { _, err := w.UpdateEntry(ctx, oldOrigin); return err }},
		{id: dest.ID,
			do:   func(ctx context.Context, w Writer) error { _, err := w.UpdateEntry(ctx, dest); return err },
			undo: func(ctx context.Context, w Writer) error { _, err := w.UpdateEntry(ctx, oldDest); return err }},
		{id: p.id,
			do:   func(ctx context.Context, w Writer) error { return updateRecord(ctx, w, p) },
			undo: func(ctx context.Context, w Writer) error { return updateRecord(ctx, w, old) }},
	}
	if err := s.run(ctx, p.kind, "update", p.id, steps); err != nil {
		return pair{}, err
	}
	return p, nil
}

func (s *service) delete(ctx context.Context, p pair) error {
	steps := make([]step, 0, 3)
	for _, id := range []uuid.UUID{p.originID, p.destID} {
		e, err := s.repo.GetEntry(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("paired leg already missing", "kind", p.kind, "id", p.id, "entry_id", id)
			continue
		}
		if err != nil {
			return err
		}
		steps = append(steps, step{id: e.ID,
			do:   func(ctx context.Context, w Writer) error { return w.DeleteEntry(ctx, e.ID) },
			undo: func(ctx context.Context, w Writer) error { _, err := w.CreateEntry(ctx, e); return err }})
	}
	steps = append(steps, step{id: p.id,
		do:   func(ctx context.Context, w Writer) error { return deleteRecord(ctx, w, p) },
		undo: func(ctx context.Context, w Writer) error { return createRecord(ctx, w, p) }})
	return s.run(ctx, p.kind, "delete", p.id, steps)
}

func createRecord(ctx context.Context, w Writer, p pair) error {
	if p.kind == KindInvoicePayment {
		_, err := w.CreateInvoicePayment(ctx, p.payment())
		return err
	}
	_, err := w.CreateTransfer(ctx, p.transfer())
	return err
}

func updateRecord(ctx context.Context, w Writer, p pair) error {
	if p.kind == KindInvoicePayment {
		_, err := w.UpdateInvoicePayment(ctx, p.payment())
		return err
	}
	_, err := w.UpdateTransfer(ctx, p.transfer())
	return err
}

func deleteRecord(ctx context.Context, w Writer, p pair) error {
	if p.kind == KindInvoicePayment {
		return w.DeleteInvoicePayment(ctx, p.id)
	}
	return w.DeleteTransfer(ctx, p.id)
}
