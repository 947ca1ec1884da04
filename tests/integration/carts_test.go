package integration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
	"github.com/shopspring/decimal"
)

func createTestVariant(t *testing.T, ctx context.Context, db *sql.DB, slug, sku, price string, inventory int) *models.Variant {
	t.Helper()

	product, err := store.CreateProduct(ctx, db, "Test "+slug, slug, "Test")
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("Parse price: %v", err)
	}

	variant, err := store.CreateVariant(ctx, db, product.ID, sku, p, "", "", inventory)
	if err != nil {
		t.Fatalf("Create variant: %v", err)
	}

	return variant
}

func TestAddToCartAppendsLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.UpsertUserByEmail(ctx, db, "cart@example.com", "Cart User")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	variant := createTestVariant(t, ctx, db, "cart-tee", "CART-001", "15.00", 10)

	if _, err := store.AddItemForUser(ctx, db, user.ID, variant.ID, 2); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	// Adding the same variant again appends a second line, never merges.
	if _, err := store.AddItemForUser(ctx, db, user.ID, variant.ID, 1); err != nil {
		t.Fatalf("Add item again: %v", err)
	}

	cart, err := store.GetCartByUser(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("Expected 2 cart lines, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 || cart.Items[1].Quantity != 1 {
		t.Errorf("Expected quantities [2, 1], got [%d, %d]", cart.Items[0].Quantity, cart.Items[1].Quantity)
	}
	if cart.Items[0].Variant.PriceCents != 1500 {
		t.Errorf("Expected variant price 1500, got %d", cart.Items[0].Variant.PriceCents)
	}
	if cart.Items[0].ProductName != "Test cart-tee" {
		t.Errorf("Expected product name resolved, got %q", cart.Items[0].ProductName)
	}

	var cartCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM carts WHERE user_id = $1`, user.ID).Scan(&cartCount); err != nil {
		t.Fatalf("Count carts: %v", err)
	}
	if cartCount != 1 {
		t.Errorf("Expected a single cart per user, got %d", cartCount)
	}
}

func TestGuestCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	variant := createTestVariant(t, ctx, db, "guest-tee", "GUEST-001", "20.00", 5)
	token := uuid.NewString()

	if _, err := store.AddItemForGuest(ctx, db, token, variant.ID, 3); err != nil {
		t.Fatalf("Add guest item: %v", err)
	}

	cart, err := store.GetCartBySession(ctx, db, token)
	if err != nil {
		t.Fatalf("Get guest cart: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("Expected 1 cart line, got %d", len(cart.Items))
	}
	if cart.SessionID != token {
		t.Errorf("Expected session id %s, got %s", token, cart.SessionID)
	}

	// A different browser token sees no cart.
	if _, err := store.GetCartBySession(ctx, db, uuid.NewString()); err != database.ErrCartNotFound {
		t.Errorf("Expected cart not found for fresh token, got: %v", err)
	}
}

func TestGetCartMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.UpsertUserByEmail(ctx, db, "nocart@example.com", "No Cart")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	if _, err := store.GetCartByUser(ctx, db, user.ID); err != database.ErrCartNotFound {
		t.Errorf("Expected cart not found, got: %v", err)
	}
}

func TestAddToCartUnknownVariant(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.UpsertUserByEmail(ctx, db, "badvariant@example.com", "Bad Variant")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	if _, err := store.AddItemForUser(ctx, db, user.ID, 9999, 1); err != database.ErrVariantNotFound {
		t.Errorf("Expected variant not found, got: %v", err)
	}
}
