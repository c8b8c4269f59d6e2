package domain

import "github.com/shopspring/decimal"

// CartLine is one product in a user's cart. There is at most one line per
// (user, product) and Quantity is always at least 1.
type CartLine struct {
	UserID    int64   `json:"user_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Subtotal returns quantity times unit price without rounding.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums the unrounded subtotals of all lines. Callers round the
// result once for display.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
