package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/safar/go-storefront/internal/auth"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/payments"
	"github.com/safar/go-storefront/internal/store"
	"github.com/stripe/stripe-go/v80"
)

const maxWebhookBody = 65536

func handleProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		result, err := store.ListProducts(ctx, db, page, pageSize)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleProductBySlug(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		slug := strings.TrimPrefix(r.URL.Path, "/api/products/")
		if slug == "" || strings.Contains(slug, "/") {
			respondError(w, http.StatusBadRequest, "Invalid product slug")
			return
		}

		product, err := store.GetProductBySlug(ctx, db, slug)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleCart(db *sql.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			var cart *models.Cart
			var err error

			if userID, ok := sessions.UserID(r); ok {
				cart, err = store.GetCartByUser(ctx, db, userID)
			} else if token, hasToken := sessions.PeekGuestToken(r); hasToken {
				cart, err = store.GetCartBySession(ctx, db, token)
			} else {
				// A browser with no guest token has no cart; don't mint a
				// token on a read.
				cart = &models.Cart{Items: []models.CartItem{}}
			}
			if errors.Is(err, database.ErrCartNotFound) {
				cart, err = &models.Cart{Items: []models.CartItem{}}, nil
			}
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if cart.Items == nil {
				cart.Items = []models.CartItem{}
			}

			respondJSON(w, http.StatusOK, cart)

		case http.MethodPost:
			var req struct {
				VariantID int64 `json:"variant_id"`
				Quantity  int   `json:"quantity"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			var item *models.CartItem
			var err error

			if userID, ok := sessions.UserID(r); ok {
				item, err = store.AddItemForUser(ctx, db, userID, req.VariantID, req.Quantity)
			} else {
				var token string
				token, err = sessions.GuestToken(w, r)
				if err == nil {
					item, err = store.AddItemForGuest(ctx, db, token, req.VariantID, req.Quantity)
				}
			}
			if err != nil {
				respondStoreError(w, err)
				return
			}

			respondJSON(w, http.StatusCreated, item)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleWishlist(db *sql.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := sessions.UserID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		switch r.Method {
		case http.MethodGet:
			wishlist, err := store.GetWishlist(ctx, db, userID)
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, wishlist)

		case http.MethodPost:
			var req struct {
				VariantID int64 `json:"variant_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			item, err := store.AddWishlistItem(ctx, db, userID, req.VariantID)
			if err != nil {
				respondStoreError(w, err)
				return
			}

			respondJSON(w, http.StatusCreated, item)

		case http.MethodDelete:
			itemID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid wishlist item ID")
				return
			}

			if err := store.DeleteWishlistItem(ctx, db, userID, itemID); err != nil {
				respondStoreError(w, err)
				return
			}

			respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCreateCheckoutSession(db *sql.DB, sessions *auth.Sessions, client payments.CheckoutClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := sessions.UserID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		cart, err := store.GetCartByUser(ctx, db, userID)
		if errors.Is(err, database.ErrCartNotFound) || (err == nil && len(cart.Items) == 0) {
			respondError(w, http.StatusBadRequest, database.ErrCartEmpty.Error())
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		lines := make([]payments.LineItem, 0, len(cart.Items))
		items := make([]store.OrderItemRequest, 0, len(cart.Items))
		for _, ci := range cart.Items {
			lines = append(lines, payments.LineItem{
				Name:            ci.ProductName,
				UnitAmountCents: ci.Variant.PriceCents,
				Quantity:        int64(ci.Quantity),
			})
			items = append(items, store.OrderItemRequest{
				VariantID:      ci.VariantID,
				Quantity:       ci.Quantity,
				UnitPriceCents: ci.Variant.PriceCents,
			})
		}

		checkoutSession, err := client.CreateCheckoutSession(ctx, "usd", lines)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		_, err = store.CreateOrderFromCart(ctx, db, store.CreateOrderRequest{
			UserID:          userID,
			Currency:        "usd",
			StripeSessionID: checkoutSession.ID,
			Items:           items,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"url": checkoutSession.URL})
	}
}

func handleStripeWebhook(db *sql.DB, signingSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		event, err := payments.VerifyEvent(payload, r.Header.Get("Stripe-Signature"), signingSecret)
		if err != nil {
			log.Printf("Webhook signature verification failed: %v", err)
			respondError(w, http.StatusBadRequest, "Invalid signature")
			return
		}

		if event.Type != stripe.EventTypeCheckoutSessionCompleted {
			respondJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}

		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid event payload")
			return
		}

		// Unknown session ids and replays both come back paid=false and are
		// acknowledged anyway.
		if _, err := store.MarkOrderPaid(ctx, db, checkoutSession.ID); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func handleOrders(db *sql.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := sessions.UserID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		result, err := store.ListOrdersCursor(ctx, db, userID, r.URL.Query().Get("cursor"), limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleOrderByID(db *sql.DB, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := sessions.UserID(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
		idStr, action, _ := strings.Cut(rest, "/")

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		switch {
		case r.Method == http.MethodGet && action == "":
			order, err := store.GetOrderForUser(ctx, db, id, userID)
			if err != nil {
				respondStoreError(w, err)
				return
			}

			respondJSON(w, http.StatusOK, order)

		case r.Method == http.MethodPost && action == "cancel":
			order, err := store.CancelOrder(ctx, db, id, userID)
			if err != nil {
				respondStoreError(w, err)
				return
			}

			respondJSON(w, http.StatusOK, order)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrVariantNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrWishlistItemNotFound),
		errors.Is(err, database.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrCartEmpty),
		errors.Is(err, database.ErrOrderNotCancellable),
		errors.Is(err, database.ErrTokenInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
