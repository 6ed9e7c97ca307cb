package services

import (
	"github.com/shopspring/decimal"
)

var (
	// TaxRate is the value-added tax applied to every order subtotal.
	TaxRate = decimal.RequireFromString("0.19")
	// ShippingPrice is flat and unconditional.
	ShippingPrice = decimal.Zero
)

// Totals are the money figures of a cart or an order. Tax is not rounded.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	Total         decimal.Decimal `json:"total"`
}

// PricedLine is a unit price times a quantity.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount is the line total.
func (l PricedLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotals sums the lines and applies tax and shipping.
func ComputeTotals(lines []PricedLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		ShippingPrice: ShippingPrice,
		Total:         subtotal.Add(tax).Add(ShippingPrice),
	}
}
