package gateway

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RandToCents converts a major-unit amount to the minor units the gateway
// expects. Conversion happens only at this boundary.
func RandToCents(rand decimal.Decimal) int64 {
	return rand.Mul(hundred).Round(0).IntPart()
}

// CentsToRand converts a gateway minor-unit amount back to the major unit.
func CentsToRand(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
