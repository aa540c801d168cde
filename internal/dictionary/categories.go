package dictionary

import (
	"strings"

	"github.com/tinoosan/finledger/internal/ledger"
)

type CategoryDef struct {
	Name     string              `json:"name"`
	Type     ledger.CategoryType `json:"type"`
	Reserved bool                `json:"reserved"`
}

var curated = map[ledger.CategoryType][]CategoryDef{
	ledger.CategoryTypeSystem: {
		{Name: ledger.CategoryNameTransfer, Type: ledger.CategoryTypeSystem, Reserved: true},
		{Name: ledger.CategoryNameInvoicePayment, Type: ledger.CategoryTypeSystem, Reserved: true},
	},
	ledger.CategoryTypeIncome: {
		{Name: "Salary", Type: ledger.CategoryTypeIncome},
		{Name: "Interest", Type: ledger.CategoryTypeIncome},
		{Name: "Refund", Type: ledger.CategoryTypeIncome},
		{Name: "Other Income", Type: ledger.CategoryTypeIncome},
	},
	ledger.CategoryTypeExpense: {
		{Name: "Groceries", Type: ledger.CategoryTypeExpense},
		{Name: "Eating Out", Type: ledger.CategoryTypeExpense},
		{Name: "Housing", Type: ledger.CategoryTypeExpense},
		{Name: "Utilities", Type: ledger.CategoryTypeExpense},
		{Name: "Transport", Type: ledger.CategoryTypeExpense},
		{Name: "Health", Type: ledger.CategoryTypeExpense},
		{Name: "Education", Type: ledger.CategoryTypeExpense},
		{Name: "Shopping", Type: ledger.CategoryTypeExpense},
		{Name: "Entertainment", Type: ledger.CategoryTypeExpense},
		{Name: "General", Type: ledger.CategoryTypeExpense},
	},
}

// IsReserved reports whether name is one of the system categories the posting writer relies on.
func IsReserved(name string) bool {
	for _, c := range curated[ledger.CategoryTypeSystem] {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// CategoriesFor lists curated categories; nil returns every type.
func CategoriesFor(t *ledger.CategoryType) []CategoryDef {
	if t == nil {
		out := make([]CategoryDef, 0)
		for _, typ := range []ledger.CategoryType{ledger.CategoryTypeSystem, ledger.CategoryTypeIncome, ledger.CategoryTypeExpense} {
			out = append(out, curated[typ]...)
		}
		return out
	}
	return curated[*t]
}
