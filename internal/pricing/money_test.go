package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/status"
)

func TestPercentOf_FlooringRule(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		bp       int64
		expected int64
	}{
		{"exact", 10000, 250, 250},
		{"floors down", 333, 100, 3},
		{"floors to zero", 99, 100, 0},
		{"full rate", 5000, 10000, 5000},
		{"zero amount", 0, 500, 0},
		{"zero rate", 5000, 0, 0},
		{"over 100 percent", 1000, 15000, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := percentOf(tt.amount, tt.bp)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPercentOf_NeverExceedsBase(t *testing.T) {
	// For bp <= 10000 the computed fee can never exceed the base.
	for _, amount := range []int64{1, 99, 333, 5000, 999999} {
		for _, bp := range []int64{1, 250, 9999, 10000} {
			got, err := percentOf(amount, bp)
			require.NoError(t, err)
			assert.LessOrEqual(t, got, amount)
		}
	}
}

func TestMulChecked_Overflow(t *testing.T) {
	_, err := mulChecked(math.MaxInt64/2, 3)
	assert.ErrorIs(t, err, status.ErrAmountOverflow)

	got, err := mulChecked(math.MaxInt64, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestAddChecked_Overflow(t *testing.T) {
	_, err := addChecked(math.MaxInt64, 1)
	assert.ErrorIs(t, err, status.ErrAmountOverflow)

	got, err := addChecked(math.MaxInt64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestPercentOf_OverflowDetected(t *testing.T) {
	_, err := percentOf(math.MaxInt64/100, 250)
	assert.ErrorIs(t, err, status.ErrAmountOverflow)
}
