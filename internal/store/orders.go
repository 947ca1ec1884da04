package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

type CreateOrderRequest struct {
	UserID          int64
	Currency        string
	StripeSessionID string
	Items           []OrderItemRequest
}

// OrderItemRequest carries the unit price observed in the cart at checkout
// time; the order snapshots it so later variant price changes do not move the
// total.
type OrderItemRequest struct {
	VariantID      int64
	Quantity       int
	UnitPriceCents int64
}

// CreateOrderFromCart writes the pending order and its items in a single
// serializable transaction. The total is Σ quantity × unit price over the
// request items.
func CreateOrderFromCart(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrCartEmpty
	}

	var totalCents int64
	for _, item := range req.Items {
		totalCents += item.UnitPriceCents * int64(item.Quantity)
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var orderID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, status, total_cents, currency, stripe_session_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW(), NOW())
			 RETURNING id`,
			req.UserID, models.OrderStatusPending, totalCents, req.Currency, req.StripeSessionID).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, variant_id, quantity, unit_price_cents, created_at)
				 VALUES ($1, $2, $3, $4, NOW())`,
				orderID, item.VariantID, item.Quantity, item.UnitPriceCents)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		order = &models.Order{ID: orderID}
		err = tx.QueryRowContext(ctx,
			`SELECT user_id, status, total_cents, currency, COALESCE(stripe_session_id, ''), created_at, updated_at
			 FROM orders WHERE id = $1`,
			orderID).Scan(
			&order.UserID,
			&order.Status,
			&order.TotalCents,
			&order.Currency,
			&order.StripeSessionID,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// MarkOrderPaid flips the order matching the payment session from pending to
// paid and decrements each line item's variant inventory, all in one
// transaction. The status guard in the UPDATE doubles as the idempotency
// guard: an unknown session id or an already-paid order returns (false, nil)
// without touching inventory, so a replayed webhook cannot double-decrement.
func MarkOrderPaid(ctx context.Context, db *sql.DB, stripeSessionID string) (bool, error) {
	var paid bool

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		paid = false

		var orderID int64
		err := tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW()
			 WHERE stripe_session_id = $2 AND status = $3
			 RETURNING id`,
			models.OrderStatusPaid, stripeSessionID, models.OrderStatusPending).Scan(&orderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return fmt.Errorf("mark order paid: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT variant_id, quantity FROM order_items WHERE order_id = $1`,
			orderID)
		if err != nil {
			return fmt.Errorf("get order items: %w", err)
		}
		defer rows.Close()

		type line struct {
			variantID int64
			quantity  int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.variantID, &l.quantity); err != nil {
				return fmt.Errorf("scan order item: %w", err)
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		for _, l := range lines {
			// Nothing reserved stock earlier, so the decrement clamps at zero
			// rather than failing a payment that already happened.
			_, err := tx.ExecContext(ctx,
				`UPDATE variants
				 SET inventory = GREATEST(inventory - $1, 0),
				     updated_at = NOW()
				 WHERE id = $2`,
				l.quantity, l.variantID)
			if err != nil {
				return fmt.Errorf("decrement inventory: %w", err)
			}
		}

		paid = true
		return nil
	})

	if err != nil {
		return false, err
	}

	return paid, nil
}

// CancelOrder applies the cancellation policy for the caller's own order:
// shipped and delivered orders are past cancellation, re-cancelling a
// cancelled order succeeds without effect, everything else moves to cancelled.
func CancelOrder(ctx context.Context, db *sql.DB, orderID, userID int64) (*models.Order, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			orderID, userID).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if status == models.OrderStatusCancelled {
			return nil
		}
		if !models.CanCancel(status) {
			return database.ErrOrderNotCancellable
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.OrderStatusCancelled, orderID)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetOrderForUser(ctx, db, orderID, userID)
}

func GetOrderForUser(ctx context.Context, db *sql.DB, id, userID int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, user_id, status, total_cents, currency, COALESCE(stripe_session_id, ''), created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2`

	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalCents,
		&order.Currency,
		&order.StripeSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, variant_id, quantity, unit_price_cents, created_at
		FROM order_items
		WHERE order_id = $1`

	rows, err := db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.VariantID,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT id, user_id, status, total_cents, currency, COALESCE(stripe_session_id, ''), created_at, updated_at
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalCents,
			&order.Currency,
			&order.StripeSessionID,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
