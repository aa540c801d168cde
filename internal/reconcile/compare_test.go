package reconcile

import (
	"testing"

	"github.com/govalues/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompare_Tolerance(t *testing.T) {
	tests := []struct {
		system, reported string
		wantDiff         string
		want             bool
	}{
		{"100.00", "100.004", "0.004", true},
		{"100.00", "100.02", "0.02", false},
		{"100.00", "100.01", "0.01", false},
		{"100.00", "99.995", "-0.005", true},
		{"-250.40", "-250.40", "0", true},
		{"-250.40", "-240.40", "10", false},
	}
	for _, tt := range tests {
		got := Compare(dec(tt.system), dec(tt.reported), DefaultTolerance)
		assert.True(t, got.Difference.Equal(dec(tt.wantDiff)), "%s vs %s: diff %s", tt.system, tt.reported, got.Difference)
		assert.Equal(t, tt.want, got.IsReconciled, "%s vs %s", tt.system, tt.reported)
	}
}

func TestCompareAmount(t *testing.T) {
	total, err := money.NewAmountFromMinorUnits("BRL", -10000)
	require.NoError(t, err)

	got, err := CompareAmount(total, dec("-100.00"))
	require.NoError(t, err)
	assert.True(t, got.IsReconciled)
	assert.True(t, got.SystemTotal.Equal(dec("-100")))

	got, err = CompareAmount(total, dec("-98.50"))
	require.NoError(t, err)
	assert.False(t, got.IsReconciled)
	assert.Equal(t, "1.5", got.Difference.String())
}

func TestParseReported(t *testing.T) {
	d, err := ParseReported("1234.56")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("1234.56")))

	_, err = ParseReported("12,34")
	assert.Error(t, err)
}
