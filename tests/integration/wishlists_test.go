package integration

import (
	"context"
	"testing"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/store"
)

func TestWishlistLazyCreateAndDuplicates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.UpsertUserByEmail(ctx, db, "wish@example.com", "Wish User")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	variant := createTestVariant(t, ctx, db, "wish-tee", "WISH-001", "30.00", 10)

	if _, err := store.AddWishlistItem(ctx, db, user.ID, variant.ID); err != nil {
		t.Fatalf("Add wishlist item: %v", err)
	}
	// Duplicates are allowed by the schema contract.
	if _, err := store.AddWishlistItem(ctx, db, user.ID, variant.ID); err != nil {
		t.Fatalf("Add duplicate wishlist item: %v", err)
	}

	wishlist, err := store.GetWishlist(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get wishlist: %v", err)
	}

	if len(wishlist.Items) != 2 {
		t.Fatalf("Expected 2 wishlist items, got %d", len(wishlist.Items))
	}
	if wishlist.Items[0].Variant.SKU != "WISH-001" {
		t.Errorf("Expected variant resolved, got SKU %q", wishlist.Items[0].Variant.SKU)
	}
	if wishlist.Items[0].Product.Slug != "wish-tee" {
		t.Errorf("Expected product resolved, got slug %q", wishlist.Items[0].Product.Slug)
	}

	var wishlistCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM wishlists WHERE user_id = $1`, user.ID).Scan(&wishlistCount); err != nil {
		t.Fatalf("Count wishlists: %v", err)
	}
	if wishlistCount != 1 {
		t.Errorf("Expected a single wishlist per user, got %d", wishlistCount)
	}
}

func TestGetWishlistEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.UpsertUserByEmail(ctx, db, "nowish@example.com", "No Wish")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	wishlist, err := store.GetWishlist(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get wishlist: %v", err)
	}

	if len(wishlist.Items) != 0 {
		t.Errorf("Expected empty wishlist, got %d items", len(wishlist.Items))
	}
}

func TestDeleteWishlistItemOwnership(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner, err := store.UpsertUserByEmail(ctx, db, "owner@example.com", "Owner")
	if err != nil {
		t.Fatalf("Create owner: %v", err)
	}
	other, err := store.UpsertUserByEmail(ctx, db, "other@example.com", "Other")
	if err != nil {
		t.Fatalf("Create other user: %v", err)
	}

	variant := createTestVariant(t, ctx, db, "own-tee", "OWN-001", "12.50", 10)

	item, err := store.AddWishlistItem(ctx, db, owner.ID, variant.ID)
	if err != nil {
		t.Fatalf("Add wishlist item: %v", err)
	}

	// Another authenticated user must not be able to delete it.
	if err := store.DeleteWishlistItem(ctx, db, other.ID, item.ID); err != database.ErrWishlistItemNotFound {
		t.Errorf("Expected not found for non-owner, got: %v", err)
	}

	wishlist, err := store.GetWishlist(ctx, db, owner.ID)
	if err != nil {
		t.Fatalf("Get wishlist: %v", err)
	}
	if len(wishlist.Items) != 1 {
		t.Fatalf("Item should survive a non-owner delete, got %d items", len(wishlist.Items))
	}

	if err := store.DeleteWishlistItem(ctx, db, owner.ID, item.ID); err != nil {
		t.Fatalf("Owner delete: %v", err)
	}

	wishlist, err = store.GetWishlist(ctx, db, owner.ID)
	if err != nil {
		t.Fatalf("Get wishlist: %v", err)
	}
	if len(wishlist.Items) != 0 {
		t.Errorf("Expected empty wishlist after delete, got %d items", len(wishlist.Items))
	}
}
