package domain

import "time"

// CartItem is one product line in an account's cart. Price and carbon
// figures are read through to the live product at listing time; the cart
// row only pins product and quantity.
type CartItem struct {
	ID        string
	AccountID string
	ProductID string
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cart is the resolved view handed to callers: items joined against the
// catalogue with running totals.
type Cart struct {
	Items            []CartLine
	TotalPaise       int64
	TotalCarbonGrams int64
}

// CartLine is a cart item resolved against its product.
type CartLine struct {
	ItemID      string
	ProductID   string
	Name        string
	PricePaise  int64
	CarbonGrams int64
	Quantity    int64
	ImageURL    string
}
