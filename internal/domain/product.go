package domain

import "time"

// Product categories are free-form strings on the wire but sellers are
// nudged toward these. Filtering matches verbatim.
const (
	CategoryHome     = "home"
	CategoryFashion  = "fashion"
	CategoryGrocery  = "grocery"
	CategoryPersonal = "personal-care"
)

type Product struct {
	ID          string
	SellerID    string
	Name        string
	Description string
	Category    string
	PricePaise  int64 // smallest currency unit, avoids float drift
	CarbonGrams int64 // estimated lifecycle footprint in grams CO2e
	Stock       int64
	Featured    bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows a catalogue listing. Zero values mean "no
// constraint" for that axis.
type ProductFilter struct {
	Category string
	SellerID string
	Featured *bool
	Search   string // substring match against name
	// MaxCarbonGrams caps the footprint; zero means no cap.
	MaxCarbonGrams int64
	Limit          int
	Offset         int
}
