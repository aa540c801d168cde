package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinoosan/finledger/internal/ledger"
)

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("Transfer Between Accounts"))
	assert.True(t, IsReserved(" invoice payment "))
	assert.False(t, IsReserved("Groceries"))
}

func TestCategoriesFor(t *testing.T) {
	sys := ledger.CategoryTypeSystem
	assert.Len(t, CategoriesFor(&sys), 2)
	all := CategoriesFor(nil)
	assert.Equal(t, CategoriesFor(&sys), all[:2])
	for _, c := range all {
		assert.Equal(t, c.Type == ledger.CategoryTypeSystem, c.Reserved, c.Name)
	}
}
