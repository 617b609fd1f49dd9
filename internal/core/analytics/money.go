package analytics

import "github.com/shopspring/decimal"

// MinorUnits converts a decimal currency amount into integer minor
// units (cents). Sub-cent precision is truncated, matching the integer
// coercion the upstream system applied to bill amounts — but at 1/100
// of the rounding error, since whole currency units are preserved.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

// FromMinorUnits renders minor units back as a decimal currency amount.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Shift(-2)
}
