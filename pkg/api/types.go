package api

import "time"

// RegisterRequest is the registration intake. Role is optional; anything
// outside the known set is coerced to "customer" server-side.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`

	// Seller registrations may describe their business up front.
	BusinessName string `json:"business_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
}

type RegisterResponse struct {
	Message string  `json:"message"`
	User    Account `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Account `json:"user"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetResponse deliberately reads the same whether or not the
// email exists. ResetToken is only populated when the server runs with
// reset-token delivery disabled (local development).
type PasswordResetResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Account is the external serialization of an account. It never carries
// the password hash or any reset/verification secrets.
type Account struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	// Role-keyed profile variant: at most one of these is present.
	Customer *CustomerProfile `json:"customer,omitempty"`
	Seller   *SellerProfile   `json:"seller,omitempty"`
}

type CustomerProfile struct {
	LoyaltyPoints    int64 `json:"loyalty_points"`
	CarbonSavedGrams int64 `json:"carbon_saved_grams"`
}

type SellerProfile struct {
	BusinessName string `json:"business_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	Verified     bool   `json:"verified"`
}

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	PricePaise  int64  `json:"price_paise"`
	CarbonGrams int64  `json:"carbon_grams"`
	Stock       int64  `json:"stock"`
	Featured    bool   `json:"featured"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	PricePaise  int64     `json:"price_paise"`
	CarbonGrams int64     `json:"carbon_grams"`
	Stock       int64     `json:"stock"`
	Featured    bool      `json:"featured"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

type CartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

type Cart struct {
	Items            []CartItem `json:"items"`
	TotalPaise       int64      `json:"total_paise"`
	TotalCarbonGrams int64      `json:"total_carbon_grams"`
}

type OrderItem struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	PricePaise  int64  `json:"price_paise"`
	CarbonGrams int64  `json:"carbon_grams"`
	Quantity    int64  `json:"quantity"`
}

type Order struct {
	ID               string      `json:"id"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
	TotalPaise       int64       `json:"total_paise"`
	TotalCarbonGrams int64       `json:"total_carbon_grams"`
	CreatedAt        time.Time   `json:"created_at"`
	PaidAt           *time.Time  `json:"paid_at,omitempty"`
}

// PaymentIntent describes the simulated UPI leg of a checkout: the
// upi:// deep link plus a QR image URL rendering it.
type PaymentIntent struct {
	OrderID    string `json:"order_id"`
	UPIURI     string `json:"upi_uri"`
	QRImageURL string `json:"qr_image_url"`
	TotalPaise int64  `json:"total_paise"`
}

// SellerStats is the admin-wide view of the seller population.
type SellerStats struct {
	TotalSellers    int64 `json:"total_sellers"`
	VerifiedSellers int64 `json:"verified_sellers"`
	ActiveSellers   int64 `json:"active_sellers"`
}

// SellerDashboard is one seller's own catalogue and sales summary.
type SellerDashboard struct {
	ProductCount    int64 `json:"product_count"`
	UnitsSold       int64 `json:"units_sold"`
	RevenuePaise    int64 `json:"revenue_paise"`
	CarbonSoldGrams int64 `json:"carbon_sold_grams"`
}

type AccountList struct {
	Users  []Account `json:"users"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Signer   string `json:"signer,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
