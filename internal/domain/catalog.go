package domain

import "github.com/shopspring/decimal"

// Banner names seeded at startup and referenced by the menus.
const (
	BannerMain     = "main"
	BannerAbout    = "about"
	BannerPayment  = "payment"
	BannerShipping = "shipping"
	BannerCatalog  = "catalog"
	BannerCart     = "cart"
)

// Product is a catalog item. Price keeps full precision; rounding happens
// only when it is rendered.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	CategoryID  int64           `json:"category_id"`
}

// Category groups products. Categories are flat.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Banner is the static image and text shown for a menu.
type Banner struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// FormatMoney renders an amount with two decimal places, rounding half to
// even.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}
