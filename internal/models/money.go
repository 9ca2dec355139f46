package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals are JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
