package billing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

func TestScheduleOf(t *testing.T) {
	closing, due := 10, 20
	card := ledger.Account{Kind: ledger.AccountKindCreditCard, ClosingDay: &closing, DueDay: &due}
	s, err := ScheduleOf(card)
	assert.NoError(t, err)
	assert.Equal(t, Schedule{ClosingDay: 10, DueDay: 20}, s)

	_, err = ScheduleOf(ledger.Account{Kind: ledger.AccountKindBank})
	assert.True(t, errors.Is(err, errs.ErrInvalid))

	_, err = ScheduleOf(ledger.Account{Kind: ledger.AccountKindCreditCard, ClosingDay: &closing})
	assert.True(t, errors.Is(err, errs.ErrInvalidConfiguration))
}

func TestPeriodKey(t *testing.T) {
	closing, due := 10, 20
	card := ledger.Account{Kind: ledger.AccountKindCreditCard, ClosingDay: &closing, DueDay: &due}
	assert.Equal(t, "2024-03", PeriodKey(card, date(t, "2024-03-10")))
	assert.Equal(t, "2024-04", PeriodKey(card, date(t, "2024-03-11")))
	assert.Equal(t, "", PeriodKey(ledger.Account{Kind: ledger.AccountKindCash}, date(t, "2024-03-11")))
}
