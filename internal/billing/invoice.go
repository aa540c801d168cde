package billing

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/govalues/money"

	"github.com/tinoosan/finledger/internal/ledger"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Assignment holds the entries that belong to a cycle and their signed sum.
type Assignment struct {
	Entries []ledger.Entry
	Total   money.Amount
}

// Assign selects the entries dated within the cycle (inclusive) and sums them.
// Invoice payment legs are skipped: they settle an earlier invoice and must not be counted again.
// currency gives the zero total when nothing matches.
func Assign(entries []ledger.Entry, c Cycle, currency string) (Assignment, error) {
	total, err := money.NewAmountFromMinorUnits(currency, 0)
	if err != nil {
		return Assignment{}, fmt.Errorf("zero total: %w", err)
	}
	out := Assignment{Entries: make([]ledger.Entry, 0), Total: total}
	for _, e := range entries {
		if e.InvoicePaymentID != nil || !c.Contains(e.Date) {
			continue
		}
		sum, err := out.Total.Add(e.Amount)
		if err != nil {
			return Assignment{}, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		out.Total = sum
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}

// Classification is the status of an invoice on a given day.
type Classification struct {
	Status    Status `json:"status"`
	DaysToDue int    `json:"days_to_due"`
}

// Classify derives the invoice status. Rules apply in order:
// zero total is paid, before the closing date it is open, after the due date it is overdue,
// otherwise closed. A zero-balance cycle is paid even when past due.
// DaysToDue counts calendar days from today to the due date and goes negative once overdue.
func Classify(total money.Amount, today civil.Date, c Cycle) Classification {
	out := Classification{DaysToDue: c.Due.DaysSince(today)}
	switch {
	case total.IsZero():
		out.Status = StatusPaid
	case today.Before(c.End):
		out.Status = StatusOpen
	case today.After(c.Due):
		out.Status = StatusOverdue
	default:
		out.Status = StatusClosed
	}
	return out
}
