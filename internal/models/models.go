package models

import (
	"time"
)

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Variants    []Variant `json:"variants,omitempty"`
	Images      []Image   `json:"images,omitempty"`
}

// Variant is the purchasable unit of a product. Prices are integer cents;
// inventory moves only on payment confirmation.
type Variant struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	SKU        string    `json:"sku"`
	PriceCents int64     `json:"price_cents"`
	Size       string    `json:"size,omitempty"`
	Color      string    `json:"color,omitempty"`
	Inventory  int       `json:"inventory"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Image struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	Position  int    `json:"position"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Wishlist struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []WishlistItem `json:"items"`
}

type WishlistItem struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	VariantID  int64     `json:"variant_id"`
	AddedAt    time.Time `json:"added_at"`
	Variant    Variant   `json:"variant"`
	Product    Product   `json:"product"`
}

// Cart belongs to a signed-in user (UserID set) or a guest browser session
// (SessionID set); never both.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id,omitempty"`
	SessionID string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

type CartItem struct {
	ID          int64     `json:"id"`
	CartID      int64     `json:"cart_id"`
	VariantID   int64     `json:"variant_id"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	Variant     Variant   `json:"variant"`
	ProductName string    `json:"product_name"`
}

type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	Status          string      `json:"status"`
	TotalCents      int64       `json:"total_cents"`
	Currency        string      `json:"currency"`
	StripeSessionID string      `json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"order_id"`
	VariantID      int64     `json:"variant_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReturnRequest is scaffolded for post-delivery returns; no handler operates
// on it yet.
type ReturnRequest struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	OrderItemID int64     `json:"order_item_id"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

type VerificationToken struct {
	ID         int64     `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name,omitempty"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
