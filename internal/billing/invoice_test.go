package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/finledger/internal/ledger"
)

func brl(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	require.NoError(t, err)
	return a
}

func entryOn(t *testing.T, day string, minor int64) ledger.Entry {
	return ledger.Entry{ID: uuid.New(), Date: date(t, day), Amount: brl(t, minor)}
}

func minorOf(t *testing.T, a money.Amount) int64 {
	t.Helper()
	units, ok := a.MinorUnits()
	require.True(t, ok)
	return units
}

func TestAssign_ScenarioC(t *testing.T) {
	cycle, err := ComputeCycle(10, 20, date(t, "2024-03-15"))
	require.NoError(t, err)

	entries := []ledger.Entry{
		entryOn(t, "2024-02-15", -5000),
		entryOn(t, "2024-03-01", -3000),
		entryOn(t, "2024-03-10", -2000),
	}
	got, err := Assign(entries, cycle, "BRL")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 3)
	assert.Equal(t, int64(-10000), minorOf(t, got.Total))

	cls := Classify(got.Total, date(t, "2024-03-12"), cycle)
	assert.Equal(t, StatusClosed, cls.Status)
	assert.Equal(t, 8, cls.DaysToDue)
}

func TestAssign_BoundariesAndPaymentLegs(t *testing.T) {
	cycle, err := ComputeCycle(10, 20, date(t, "2024-03-15"))
	require.NoError(t, err)

	paymentID := uuid.New()
	transferID := uuid.New()
	payment := entryOn(t, "2024-03-01", 7000)
	payment.InvoicePaymentID = &paymentID
	refund := entryOn(t, "2024-03-02", 1500)
	transferIn := entryOn(t, "2024-03-03", 500)
	transferIn.TransferID = &transferID

	entries := []ledger.Entry{
		entryOn(t, "2024-02-10", -100), // previous cycle's closing day
		entryOn(t, "2024-02-11", -200), // first day
		entryOn(t, "2024-03-10", -300), // closing day
		entryOn(t, "2024-03-11", -400), // next cycle
		payment,
		refund,
		transferIn,
	}
	got, err := Assign(entries, cycle, "BRL")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 4)
	assert.Equal(t, int64(-200-300+1500+500), minorOf(t, got.Total))
	for _, e := range got.Entries {
		assert.Nil(t, e.InvoicePaymentID)
	}
}

func TestAssign_EmptyAndCurrencyMismatch(t *testing.T) {
	cycle, err := ComputeCycle(10, 20, date(t, "2024-03-15"))
	require.NoError(t, err)

	got, err := Assign(nil, cycle, "BRL")
	require.NoError(t, err)
	assert.True(t, got.Total.IsZero())
	assert.Empty(t, got.Entries)

	usd, err := money.NewAmountFromMinorUnits("USD", -100)
	require.NoError(t, err)
	_, err = Assign([]ledger.Entry{{ID: uuid.New(), Date: date(t, "2024-03-01"), Amount: usd}}, cycle, "BRL")
	assert.Error(t, err)
}

// Entries from a year of spending land in exactly one of twelve consecutive cycles.
func TestAssign_ConsecutiveCyclesDisjoint(t *testing.T) {
	s, err := NewSchedule(31, 7)
	require.NoError(t, err)
	var entries []ledger.Entry
	for d := date(t, "2023-01-01"); d.Before(date(t, "2024-01-01")); d = d.AddDays(1) {
		entries = append(entries, ledger.Entry{ID: uuid.New(), Date: d, Amount: brl(t, -1)})
	}
	seen := make(map[uuid.UUID]int)
	c := s.EndingIn(2023, 1)
	for i := 0; i < 12; i++ {
		got, err := Assign(entries, c, "BRL")
		require.NoError(t, err)
		for _, e := range got.Entries {
			seen[e.ID]++
		}
		c = s.Next(c)
	}
	assert.Len(t, seen, len(entries))
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("entry %s counted %d times", id, n)
		}
	}
}

func TestClassify_Rules(t *testing.T) {
	cycle, err := ComputeCycle(10, 20, date(t, "2024-03-15"))
	require.NoError(t, err)
	owed := brl(t, -10000)
	zero := brl(t, 0)

	tests := []struct {
		name     string
		total    money.Amount
		today    string
		want     Status
		wantDays int
	}{
		{"still accumulating", owed, "2024-03-09", StatusOpen, 11},
		{"closing day is closed", owed, "2024-03-10", StatusClosed, 10},
		{"due day is closed", owed, "2024-03-20", StatusClosed, 0},
		{"after due is overdue", owed, "2024-03-25", StatusOverdue, -5},
		{"zero before close is paid", zero, "2024-03-01", StatusPaid, 19},
		{"zero after due is paid", zero, "2024-04-30", StatusPaid, -41},
		{"credit balance is not paid", brl(t, 500), "2024-03-12", StatusClosed, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.total, date(t, tt.today), cycle)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.wantDays, got.DaysToDue)
		})
	}
}
