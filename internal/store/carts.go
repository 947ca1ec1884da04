package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

// AddItemForUser upserts the user's single cart (keyed on user_id) and appends
// a new line item. Repeated adds of the same variant append distinct rows.
func AddItemForUser(ctx context.Context, db *sql.DB, userID, variantID int64, quantity int) (*models.CartItem, error) {
	return addItem(ctx, db, cartKey{userID: userID}, variantID, quantity)
}

// AddItemForGuest is the guest-session counterpart of AddItemForUser, keyed on
// the opaque per-browser session token.
func AddItemForGuest(ctx context.Context, db *sql.DB, sessionID string, variantID int64, quantity int) (*models.CartItem, error) {
	return addItem(ctx, db, cartKey{sessionID: sessionID}, variantID, quantity)
}

type cartKey struct {
	userID    int64
	sessionID string
}

func addItem(ctx context.Context, db *sql.DB, key cartKey, variantID int64, quantity int) (*models.CartItem, error) {
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

	item := &models.CartItem{}

	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		var err error

		if key.userID != 0 {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO carts (user_id, created_at, updated_at)
				 VALUES ($1, NOW(), NOW())
				 ON CONFLICT (user_id) WHERE user_id IS NOT NULL
				 DO UPDATE SET updated_at = NOW()
				 RETURNING id`,
				key.userID).Scan(&cartID)
		} else {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO carts (session_id, created_at, updated_at)
				 VALUES ($1, NOW(), NOW())
				 ON CONFLICT (session_id) WHERE session_id IS NOT NULL
				 DO UPDATE SET updated_at = NOW()
				 RETURNING id`,
				key.sessionID).Scan(&cartID)
		}
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO cart_items (cart_id, variant_id, quantity, created_at)
			 VALUES ($1, $2, $3, NOW())
			 RETURNING id, cart_id, variant_id, quantity, created_at`,
			cartID, variantID, quantity).Scan(
			&item.ID,
			&item.CartID,
			&item.VariantID,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create cart item: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func GetCartByUser(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	return getCart(ctx, db,
		`SELECT id, COALESCE(user_id, 0), COALESCE(session_id, ''), created_at, updated_at
		 FROM carts WHERE user_id = $1`, userID)
}

func GetCartBySession(ctx context.Context, db *sql.DB, sessionID string) (*models.Cart, error) {
	return getCart(ctx, db,
		`SELECT id, COALESCE(user_id, 0), COALESCE(session_id, ''), created_at, updated_at
		 FROM carts WHERE session_id = $1`, sessionID)
}

func getCart(ctx context.Context, db *sql.DB, query string, key interface{}) (*models.Cart, error) {
	cart := &models.Cart{}

	err := db.QueryRowContext(ctx, query, key).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items, err := cartItems(ctx, db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

func cartItems(ctx context.Context, db *sql.DB, cartID int64) ([]models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ci.created_at,
		       v.id, v.product_id, v.sku, v.price_cents, v.size, v.color, v.inventory, v.created_at, v.updated_at,
		       p.name
		FROM cart_items ci
		JOIN variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.VariantID,
			&item.Quantity,
			&item.CreatedAt,
			&item.Variant.ID,
			&item.Variant.ProductID,
			&item.Variant.SKU,
			&item.Variant.PriceCents,
			&item.Variant.Size,
			&item.Variant.Color,
			&item.Variant.Inventory,
			&item.Variant.CreatedAt,
			&item.Variant.UpdatedAt,
			&item.ProductName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
