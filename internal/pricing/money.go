// Package pricing turns a cart of ticket selections plus an optional
// promo code into an itemized, reproducible fee breakdown. The whole
// package is pure: it performs no I/O and reads configuration only
// from the immutable snapshot handed in by the caller.
package pricing

import (
	"eventhub/internal/status"
)

// Currency amounts are int64 cents and percentage rates are int64
// basis points (1/100 of a percent). No float ever enters the
// pipeline.
const bpDenominator = 10000

// percentOf computes floor(amount * bp / 10000). Truncating integer
// division is the contractual rounding rule for every percentage in
// the engine; it can shift a line by at most one cent and must be the
// same everywhere so totals stay auditable.
func percentOf(amount, bp int64) (int64, error) {
	product, err := mulChecked(amount, bp)
	if err != nil {
		return 0, err
	}
	return product / bpDenominator, nil
}

// mulChecked multiplies two non-negative amounts, failing on overflow.
func mulChecked(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, status.ErrAmountOverflow
	}
	return product, nil
}

func addChecked(a, b int64) (int64, error) {
	sum := a + b
	if b > 0 && sum < a {
		return 0, status.ErrAmountOverflow
	}
	if b < 0 && sum > a {
		return 0, status.ErrAmountOverflow
	}
	return sum, nil
}
