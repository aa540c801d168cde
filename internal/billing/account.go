package billing

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// ScheduleOf reads the billing configuration of a credit card account.
func ScheduleOf(a ledger.Account) (Schedule, error) {
	if !a.IsCreditCard() {
		return Schedule{}, fmt.Errorf("%w: account %s is not a credit card", errs.ErrInvalid, a.ID)
	}
	if a.ClosingDay == nil || a.DueDay == nil {
		return Schedule{}, fmt.Errorf("%w: account %s has no closing or due day", errs.ErrInvalidConfiguration, a.ID)
	}
	return NewSchedule(*a.ClosingDay, *a.DueDay)
}

// PeriodKey returns the key of the cycle containing d, or "" for accounts that are not billed in cycles.
func PeriodKey(a ledger.Account, d civil.Date) string {
	s, err := ScheduleOf(a)
	if err != nil {
		return ""
	}
	return s.Containing(d).Key()
}
