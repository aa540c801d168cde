package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/govalues/money"
)

// AccountKind enumerates what an account represents in the household ledger.
type AccountKind string

const (
	// AccountKindBank is a checking or savings account held at a bank.
	AccountKindBank AccountKind = "bank"
	// AccountKindCash is physical cash or a wallet.
	AccountKindCash AccountKind = "cash"
	// AccountKindCreditCard is a card billed in cycles; it carries closing and due days.
	AccountKindCreditCard AccountKind = "credit_card"
	// AccountKindInvestment holds investment positions tracked at book value.
	AccountKindInvestment AccountKind = "investment"
	// AccountKindOther is anything that fits none of the above.
	AccountKindOther AccountKind = "other"
)

// Valid reports whether k is one of the known kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindBank, AccountKindCash, AccountKindCreditCard, AccountKindInvestment, AccountKindOther:
		return true
	}
	return false
}

// CategoryType separates user categories from the reserved system ones.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
	// CategoryTypeSystem marks categories the posting writer depends on.
	CategoryTypeSystem CategoryType = "system"
)

// Well-known system category names, resolved by name and CategoryTypeSystem.
const (
	CategoryNameTransfer       = "Transfer Between Accounts"
	CategoryNameInvoicePayment = "Invoice Payment"
)

// Category classifies entries.
type Category struct {
	ID   uuid.UUID
	Name string
	Type CategoryType
}

// Account represents a money container owned by the household.
type Account struct {
	ID       uuid.UUID
	Name     string
	Kind     AccountKind
	Currency string
	// ClosingDay and DueDay are set only for credit cards (1..31).
	ClosingDay *int
	DueDay     *int
}

// IsCreditCard reports whether the account is billed in cycles.
func (a Account) IsCreditCard() bool { return a.Kind == AccountKindCreditCard }

// Entry is one signed money movement on a single account.
// Negative amounts reduce the balance (debit/outflow), positive amounts increase it.
type Entry struct {
	ID          uuid.UUID
	Date        civil.Date
	Description string
	Amount      money.Amount
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Reconciled  bool
	// TransferID and InvoicePaymentID mark the entry as one leg of a paired posting.
	TransferID       *uuid.UUID
	InvoicePaymentID *uuid.UUID
	// PeriodKey caches the billing cycle the entry falls in (credit cards only).
	PeriodKey string
}

// IsPairedLeg reports whether the entry was created by a transfer or invoice payment.
func (e Entry) IsPairedLeg() bool { return e.TransferID != nil || e.InvoicePaymentID != nil }

// Transfer links the two entries that move money between accounts.
type Transfer struct {
	ID                   uuid.UUID
	Date                 civil.Date
	Description          string
	Amount               money.Amount
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	OriginEntryID        uuid.UUID
	DestinationEntryID   uuid.UUID
	Reconciled           bool
}

// InvoicePayment links the two entries that pay down a credit card from another account.
type InvoicePayment struct {
	ID                   uuid.UUID
	Date                 civil.Date
	Description          string
	Amount               money.Amount
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	OriginEntryID        uuid.UUID
	DestinationEntryID   uuid.UUID
	Reconciled           bool
}

// EntryFilter narrows entry listings. Zero values mean "no constraint"; From and To are inclusive.
type EntryFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	From       *civil.Date
	To         *civil.Date
}

// Match reports whether e satisfies the filter.
func (f EntryFilter) Match(e Entry) bool {
	if f.AccountID != nil && e.AccountID != *f.AccountID {
		return false
	}
	if f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID) {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}
