package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/store"
	"github.com/shopspring/decimal"
)

func TestGetProductBySlug(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	product, err := store.CreateProduct(ctx, db, "Classic Tee", "classic-tee", "Heavyweight cotton tee.")
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	price, _ := decimal.NewFromString("24.99")
	variant, err := store.CreateVariant(ctx, db, product.ID, "TEE-CLS-M-BLK", price, "M", "black", 60)
	if err != nil {
		t.Fatalf("Create variant: %v", err)
	}

	if variant.PriceCents != 2499 {
		t.Errorf("Expected price 2499 cents, got %d", variant.PriceCents)
	}

	if _, err := store.AddImage(ctx, db, product.ID, "https://images.example.com/tee.jpg", "Classic Tee", 0); err != nil {
		t.Fatalf("Add image: %v", err)
	}

	fetched, err := store.GetProductBySlug(ctx, db, "classic-tee")
	if err != nil {
		t.Fatalf("Get product by slug: %v", err)
	}

	if fetched.ID != product.ID {
		t.Errorf("Expected product %d, got %d", product.ID, fetched.ID)
	}
	if len(fetched.Variants) != 1 {
		t.Fatalf("Expected 1 variant, got %d", len(fetched.Variants))
	}
	if fetched.Variants[0].SKU != "TEE-CLS-M-BLK" {
		t.Errorf("Expected SKU TEE-CLS-M-BLK, got %s", fetched.Variants[0].SKU)
	}
	if len(fetched.Images) != 1 {
		t.Fatalf("Expected 1 image, got %d", len(fetched.Images))
	}
}

func TestGetProductBySlugNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetProductBySlug(ctx, db, "no-such-product")
	if err != database.ErrProductNotFound {
		t.Errorf("Expected product not found error, got: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	price, _ := decimal.NewFromString("10.00")
	for i := 0; i < 12; i++ {
		product, err := store.CreateProduct(ctx, db,
			fmt.Sprintf("Product %d", i),
			fmt.Sprintf("product-%d", i),
			"Test")
		if err != nil {
			t.Fatalf("Create product %d: %v", i, err)
		}

		_, err = store.CreateVariant(ctx, db, product.ID, fmt.Sprintf("SKU-%d", i), price, "", "", 10)
		if err != nil {
			t.Fatalf("Create variant %d: %v", i, err)
		}
	}

	page1, err := store.ListProducts(ctx, db, 1, 10)
	if err != nil {
		t.Fatalf("List products page 1: %v", err)
	}

	if page1.Total != 12 {
		t.Errorf("Expected total 12, got %d", page1.Total)
	}
	if page1.TotalPages != 2 {
		t.Errorf("Expected 2 pages, got %d", page1.TotalPages)
	}

	page2, err := store.ListProducts(ctx, db, 2, 10)
	if err != nil {
		t.Fatalf("List products page 2: %v", err)
	}

	if page2.Page != 2 {
		t.Errorf("Expected page 2, got %d", page2.Page)
	}
}
