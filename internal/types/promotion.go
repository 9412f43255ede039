package types

import "github.com/shopspring/decimal"

// Promotion is a storefront item currently offered at zero cost.
// Constructed fresh from each feed fetch and discarded after one
// reconciliation pass; never mutated.
type Promotion struct {
	// Namespace is the storefront's stable product-family key. It is the
	// join key against the ownership ledger.
	Namespace string `json:"namespace"`
	Title     string `json:"title"`
	URL       string `json:"url"`

	// Prices are kept in the feed's minor units. DiscountPrice is zero for
	// every promotion the catalog retains.
	OriginalPrice decimal.Decimal `json:"original_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
}

// IsFree reports whether the discounted price is zero.
func (p Promotion) IsFree() bool {
	return p.DiscountPrice.IsZero()
}
