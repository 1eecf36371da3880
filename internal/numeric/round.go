// Package numeric holds the rounding rule used for every decimal in the report.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds v to two decimal places, halves away from zero.
// The decimal value of v is its shortest representation, so 1.005 rounds to 1.01.
// NaN and infinities collapse to 0 so the report always serializes.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0.
// The ratio is computed in decimal so exact ties such as 1/8 round up.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2).InexactFloat64()
}
