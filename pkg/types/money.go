package types

import "github.com/shopspring/decimal"

func init() {
	// Money is rendered as a JSON number, the shape storefront clients expect.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the number of decimal places used for currency amounts.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Money parses a float literal into a cent-rounded decimal.
func Money(v float64) decimal.Decimal {
	return RoundMoney(decimal.NewFromFloat(v))
}
