package domain

import "time"

// OrderStatus is the order lifecycle. Transitions are one-way:
// pending -> paid, or pending -> cancelled.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID               string
	AccountID        string
	Status           OrderStatus
	TotalPaise       int64
	TotalCarbonGrams int64
	Items            []OrderItem
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem is a priced snapshot of a product at checkout time. Later
// catalogue edits do not rewrite history.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	Name        string
	PricePaise  int64
	CarbonGrams int64
	Quantity    int64
}

// SellerStats is the aggregate view for a seller dashboard.
type SellerStats struct {
	SellerID        string
	ProductCount    int64
	UnitsSold       int64
	RevenuePaise    int64
	CarbonSoldGrams int64
}
