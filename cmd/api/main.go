package main

import (
	"log"
	"net/http"

	"github.com/safar/go-storefront/internal/auth"
	"github.com/safar/go-storefront/internal/config"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/payments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	sessions := auth.NewSessions(cfg.Site.SessionSecret)
	auth.ConfigureGoogle(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.Site.URL)

	stripeClient := payments.NewStripeClient(cfg.Stripe.SecretKey, cfg.Site.URL)
	mailer := &auth.Mailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/products", handleProducts(db))
	mux.HandleFunc("/api/products/", handleProductBySlug(db))
	mux.HandleFunc("/api/cart", handleCart(db, sessions))
	mux.HandleFunc("/api/wishlist", handleWishlist(db, sessions))
	mux.HandleFunc("/api/checkout/create-session", handleCreateCheckoutSession(db, sessions, stripeClient))
	mux.HandleFunc("/api/webhooks/stripe", handleStripeWebhook(db, cfg.Stripe.WebhookSecret))
	mux.HandleFunc("/api/orders", handleOrders(db, sessions))
	mux.HandleFunc("/api/orders/", handleOrderByID(db, sessions))

	mux.HandleFunc("/api/auth/signin", handleSignin(db, mailer, cfg.Site.URL))
	mux.HandleFunc("/api/auth/callback", handleSigninCallback(db, sessions, cfg.Site.URL))
	mux.HandleFunc("/api/auth/signout", handleSignout(sessions))
	mux.HandleFunc("/auth/google", handleGoogleAuth())
	mux.HandleFunc("/auth/google/callback", handleGoogleCallback(db, sessions, cfg.Site.URL))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
