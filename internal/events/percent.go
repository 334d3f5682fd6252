package events

import (
	"github.com/shopspring/decimal"

	"holder-flow/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PercentChange returns (to - from) / from * 100 rendered with two decimals.
// Any change from a zero baseline is reported as domain.GrowthSentinel.
func PercentChange(from, to int64) string {
	if from == 0 {
		if to == 0 {
			return "0"
		}
		return domain.GrowthSentinel
	}
	base := decimal.NewFromInt(from)
	pct := decimal.NewFromInt(to).Sub(base).Div(base).Mul(hundred)
	return pct.Round(2).String()
}

// PercentDecrease returns (from - to) / from * 100 with the same zero-baseline convention.
func PercentDecrease(from, to int64) string {
	if from == 0 {
		return PercentChange(from, to)
	}
	base := decimal.NewFromInt(from)
	pct := base.Sub(decimal.NewFromInt(to)).Div(base).Mul(hundred)
	return pct.Round(2).String()
}
