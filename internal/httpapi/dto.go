package httpapi

import (
	"bytes"
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/reconcile"
	"github.com/tinoosan/finledger/internal/service/invoice"
)

// Accounts

type postAccountRequest struct {
	Name       string `json:"name" validate:"required"`
	Kind       string `json:"kind" validate:"required,oneof=bank cash credit_card investment other"`
	Currency   string `json:"currency" validate:"required,len=3"`
	ClosingDay *int   `json:"closing_day" validate:"omitempty,min=1,max=31"`
	DueDay     *int   `json:"due_day" validate:"omitempty,min=1,max=31"`
}

// patchAccountRequest carries optional fields; absent fields keep their current value.
type patchAccountRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Kind       *string `json:"kind" validate:"omitempty,oneof=bank cash credit_card investment other"`
	Currency   *string `json:"currency" validate:"omitempty,len=3"`
	ClosingDay *int    `json:"closing_day" validate:"omitempty,min=1,max=31"`
	DueDay     *int    `json:"due_day" validate:"omitempty,min=1,max=31"`
}

type accountResponse struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	Kind       ledger.AccountKind `json:"kind"`
	Currency   string             `json:"currency"`
	ClosingDay *int               `json:"closing_day,omitempty"`
	DueDay     *int               `json:"due_day,omitempty"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Kind: a.Kind, Currency: a.Currency, ClosingDay: a.ClosingDay, DueDay: a.DueDay}
}

type balanceResponse struct {
	AccountID   uuid.UUID   `json:"account_id"`
	AsOf        *civil.Date `json:"as_of,omitempty"`
	Currency    string      `json:"currency"`
	AmountMinor int64       `json:"amount_minor"`
	Amount      string      `json:"amount"`
}

type reconcileBalanceRequest struct {
	AsOf     civil.Date `json:"as_of"`
	Reported string     `json:"reported" validate:"required,numeric"`
}

type reconcileInvoiceRequest struct {
	Reported string `json:"reported" validate:"required,numeric"`
}

// Entries

type postEntryRequest struct {
	Date        civil.Date `json:"date"`
	Description string     `json:"description" validate:"required"`
	AccountID   uuid.UUID  `json:"account_id" validate:"required"`
	Currency    string     `json:"currency" validate:"omitempty,len=3"`
	AmountMinor int64      `json:"amount_minor" validate:"required"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Reconciled  bool       `json:"reconciled"`
}

type patchEntryRequest struct {
	Date        *civil.Date  `json:"date"`
	Description *string      `json:"description" validate:"omitempty,min=1"`
	AccountID   *uuid.UUID   `json:"account_id"`
	AmountMinor *int64       `json:"amount_minor" validate:"omitempty,ne=0"`
	CategoryID  optionalUUID `json:"category_id"`
	Reconciled  *bool        `json:"reconciled"`
}

// optionalUUID tells an absent field apart from an explicit null.
// Set is true whenever the key appears; Value is nil for null.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type entryResponse struct {
	ID               uuid.UUID  `json:"id"`
	Date             civil.Date `json:"date"`
	Description      string     `json:"description"`
	AccountID        uuid.UUID  `json:"account_id"`
	Currency         string     `json:"currency"`
	AmountMinor      int64      `json:"amount_minor"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty"`
	Reconciled       bool       `json:"reconciled"`
	TransferID       *uuid.UUID `json:"transfer_id,omitempty"`
	InvoicePaymentID *uuid.UUID `json:"invoice_payment_id,omitempty"`
	PeriodKey        string     `json:"period_key,omitempty"`
}

func minorOf(a money.Amount) int64 {
	units, _ := a.MinorUnits()
	return units
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:               e.ID,
		Date:             e.Date,
		Description:      e.Description,
		AccountID:        e.AccountID,
		Currency:         e.Amount.Curr().Code(),
		AmountMinor:      minorOf(e.Amount),
		CategoryID:       e.CategoryID,
		Reconciled:       e.Reconciled,
		TransferID:       e.TransferID,
		InvoicePaymentID: e.InvoicePaymentID,
		PeriodKey:        e.PeriodKey,
	}
}

func toEntryResponses(es []ledger.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toEntryResponse(e))
	}
	return out
}

// Transfers and invoice payments

type pairingRequest struct {
	Date                 civil.Date `json:"date"`
	Description          string     `json:"description"`
	AmountMinor          int64      `json:"amount_minor" validate:"gt=0"`
	SourceAccountID      uuid.UUID  `json:"source_account_id" validate:"required"`
	DestinationAccountID uuid.UUID  `json:"destination_account_id" validate:"required"`
	Reconciled           bool       `json:"reconciled"`
}

type pairingResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Date                 civil.Date `json:"date"`
	Description          string     `json:"description"`
	Currency             string     `json:"currency"`
	AmountMinor          int64      `json:"amount_minor"`
	SourceAccountID      uuid.UUID  `json:"source_account_id"`
	DestinationAccountID uuid.UUID  `json:"destination_account_id"`
	OriginEntryID        uuid.UUID  `json:"origin_entry_id"`
	DestinationEntryID   uuid.UUID  `json:"destination_entry_id"`
	Reconciled           bool       `json:"reconciled"`
}

func fromTransfer(t ledger.Transfer) pairingResponse {
	return pairingResponse{ID: t.ID, Date: t.Date, Description: t.Description, Currency: t.Amount.Curr().Code(), AmountMinor: minorOf(t.Amount),
		SourceAccountID: t.SourceAccountID, DestinationAccountID: t.DestinationAccountID, OriginEntryID: t.OriginEntryID, DestinationEntryID: t.DestinationEntryID, Reconciled: t.Reconciled}
}

func fromPayment(p ledger.InvoicePayment) pairingResponse {
	return pairingResponse{ID: p.ID, Date: p.Date, Description: p.Description, Currency: p.Amount.Curr().Code(), AmountMinor: minorOf(p.Amount),
		SourceAccountID: p.SourceAccountID, DestinationAccountID: p.DestinationAccountID, OriginEntryID: p.OriginEntryID, DestinationEntryID: p.DestinationEntryID, Reconciled: p.Reconciled}
}

// Invoices

type invoiceResponse struct {
	AccountID  uuid.UUID       `json:"account_id"`
	Period     string          `json:"period"`
	Cycle      billing.Cycle   `json:"cycle"`
	Currency   string          `json:"currency"`
	TotalMinor int64           `json:"total_minor"`
	OwedMinor  int64           `json:"owed_minor"`
	Status     billing.Status  `json:"status"`
	DaysToDue  int             `json:"days_to_due"`
	Entries    []entryResponse `json:"entries"`
}

func toInvoiceResponse(inv invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		AccountID:  inv.AccountID,
		Period:     inv.Period,
		Cycle:      inv.Cycle,
		Currency:   inv.Total.Curr().Code(),
		TotalMinor: minorOf(inv.Total),
		OwedMinor:  minorOf(inv.Owed),
		Status:     inv.Status,
		DaysToDue:  inv.DaysToDue,
		Entries:    toEntryResponses(inv.Entries),
	}
}

type invoiceReconciliationResponse struct {
	Invoice invoiceResponse  `json:"invoice"`
	Result  reconcile.Result `json:"result"`
}

type cycleResponse struct {
	billing.Cycle
	Period string `json:"period"`
}

type reconcileResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	AsOf      civil.Date `json:"as_of"`
	reconcile.Result
}
