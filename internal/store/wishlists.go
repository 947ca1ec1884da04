package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

// AddWishlistItem lazily creates the caller's wishlist and appends an item.
// Duplicates are allowed: adding the same variant twice yields two rows.
func AddWishlistItem(ctx context.Context, db *sql.DB, userID, variantID int64) (*models.WishlistItem, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM variants WHERE id = $1)",
		variantID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check variant exists: %w", err)
	}
	if !exists {
		return nil, database.ErrVariantNotFound
	}

	item := &models.WishlistItem{}

	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var wishlistID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO wishlists (user_id, created_at)
			 VALUES ($1, NOW())
			 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			 RETURNING id`,
			userID).Scan(&wishlistID)
		if err != nil {
			return fmt.Errorf("upsert wishlist: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO wishlist_items (wishlist_id, variant_id, added_at)
			 VALUES ($1, $2, NOW())
			 RETURNING id, wishlist_id, variant_id, added_at`,
			wishlistID, variantID).Scan(
			&item.ID,
			&item.WishlistID,
			&item.VariantID,
			&item.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("create wishlist item: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetWishlist returns the user's wishlist with each item resolved to its
// variant and that variant's product. A user without a wishlist gets an empty
// item list.
func GetWishlist(ctx context.Context, db *sql.DB, userID int64) (*models.Wishlist, error) {
	wishlist := &models.Wishlist{UserID: userID, Items: []models.WishlistItem{}}

	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM wishlists WHERE user_id = $1`,
		userID).Scan(&wishlist.ID, &wishlist.UserID, &wishlist.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return wishlist, nil
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	query := `
		SELECT wi.id, wi.wishlist_id, wi.variant_id, wi.added_at,
		       v.id, v.product_id, v.sku, v.price_cents, v.size, v.color, v.inventory, v.created_at, v.updated_at,
		       p.id, p.name, p.slug, p.description, p.created_at, p.updated_at
		FROM wishlist_items wi
		JOIN variants v ON v.id = wi.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.id`

	rows, err := db.QueryContext(ctx, query, wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.WishlistItem
		err := rows.Scan(
			&item.ID,
			&item.WishlistID,
			&item.VariantID,
			&item.AddedAt,
			&item.Variant.ID,
			&item.Variant.ProductID,
			&item.Variant.SKU,
			&item.Variant.PriceCents,
			&item.Variant.Size,
			&item.Variant.Color,
			&item.Variant.Inventory,
			&item.Variant.CreatedAt,
			&item.Variant.UpdatedAt,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Slug,
			&item.Product.Description,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		wishlist.Items = append(wishlist.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return wishlist, nil
}

// DeleteWishlistItem removes an item only if it belongs to the caller's
// wishlist. A non-owner sees the same not-found as a bogus id.
func DeleteWishlistItem(ctx context.Context, db *sql.DB, userID, itemID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM wishlist_items wi
		 USING wishlists w
		 WHERE wi.id = $1
		   AND wi.wishlist_id = w.id
		   AND w.user_id = $2`,
		itemID, userID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrWishlistItemNotFound
	}

	return nil
}
