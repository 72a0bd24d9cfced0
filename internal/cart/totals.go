package cart

import "github.com/shopspring/decimal"

// Totals is derived from the live cart, never stored.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals sums price times quantity over the lines and applies the flat
// shipping fee when the cart is non-empty. It is a pure function of its
// inputs: callers re-run it whenever the cart changes.
func ComputeTotals(items []LineItem, shippingFee decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.Price.Mul(qty))
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = shippingFee
	}

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(shipping),
	}
}
