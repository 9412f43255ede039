package types

const (
	// OrderTypePurchase is the only order type that contributes to the
	// ownership ledger. Gifts, refunds and other order types never do.
	OrderTypePurchase = "PURCHASE"

	// NamespaceLength is the fixed length of a well-formed product
	// namespace in the order history.
	NamespaceLength = 32
)

// OrderHistory is the authenticated order-history payload.
type OrderHistory struct {
	Orders []Order `json:"orders"`
}

// Order is a single order record from the account's purchase history.
type Order struct {
	OrderType string      `json:"orderType"`
	Items     []OrderItem `json:"items"`
}

// OrderItem is a line item within an order.
type OrderItem struct {
	Namespace   string `json:"namespace"`
	Description string `json:"description"`
}

// Owned reports whether this order contributes its items to the ledger.
func (o Order) Owned() bool {
	return o.OrderType == OrderTypePurchase
}

// WellFormed reports whether the item carries a namespace of the expected
// fixed length. Malformed namespaces are silently excluded from the ledger.
func (i OrderItem) WellFormed() bool {
	return len(i.Namespace) == NamespaceLength
}
