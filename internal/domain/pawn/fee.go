package pawn

import "math"

// bpsDenominator converts basis points to a fraction (1 bps = 0.01%).
const bpsDenominator = 10_000

// Fee computes floor(amount * bps / 10000) in integer arithmetic, truncating
// toward zero. The multiply is overflow-checked and fails with
// ErrMathOverflow instead of wrapping; the divide by a non-zero constant
// cannot fail.
func Fee(amount, bps uint64) (uint64, error) {
	if bps != 0 && amount > math.MaxUint64/bps {
		return 0, ErrMathOverflow
	}
	return amount * bps / bpsDenominator, nil
}

// RepayTotal returns the repayment fee and the checked principal+fee sum.
func RepayTotal(amount, bps uint64) (fee, total uint64, err error) {
	fee, err = Fee(amount, bps)
	if err != nil {
		return 0, 0, err
	}
	if amount > math.MaxUint64-fee {
		return 0, 0, ErrMathOverflow
	}
	return fee, amount + fee, nil
}
