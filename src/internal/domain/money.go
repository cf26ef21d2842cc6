package domain

import "github.com/shopspring/decimal"

const MoneyScale int32 = 2

// MaxAmount is the largest value a NUMERIC(18,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(MoneyScale)
}

func IsZeroMoney(value decimal.Decimal) bool {
	return RoundMoney(value).IsZero()
}

func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(MoneyScale)
}
