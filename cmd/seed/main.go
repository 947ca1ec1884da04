package main

import (
	"context"
	"log"

	"github.com/safar/go-storefront/internal/config"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/store"
	"github.com/shopspring/decimal"
)

type seedVariant struct {
	sku       string
	price     string
	size      string
	color     string
	inventory int
}

type seedProduct struct {
	name        string
	slug        string
	description string
	imageURL    string
	variants    []seedVariant
}

var catalog = []seedProduct{
	{
		name:        "Classic Tee",
		slug:        "classic-tee",
		description: "Heavyweight cotton tee.",
		imageURL:    "https://images.example.com/classic-tee.jpg",
		variants: []seedVariant{
			{sku: "TEE-CLS-S-BLK", price: "24.99", size: "S", color: "black", inventory: 40},
			{sku: "TEE-CLS-M-BLK", price: "24.99", size: "M", color: "black", inventory: 60},
			{sku: "TEE-CLS-L-WHT", price: "24.99", size: "L", color: "white", inventory: 35},
		},
	},
	{
		name:        "Canvas Tote",
		slug:        "canvas-tote",
		description: "Everyday carry tote, reinforced straps.",
		imageURL:    "https://images.example.com/canvas-tote.jpg",
		variants: []seedVariant{
			{sku: "TOTE-CNV-NAT", price: "18.00", color: "natural", inventory: 80},
		},
	},
	{
		name:        "Wool Beanie",
		slug:        "wool-beanie",
		description: "Merino wool, one size.",
		imageURL:    "https://images.example.com/wool-beanie.jpg",
		variants: []seedVariant{
			{sku: "BEAN-WOOL-GRY", price: "15.00", color: "grey", inventory: 25},
			{sku: "BEAN-WOOL-NVY", price: "15.00", color: "navy", inventory: 25},
		},
	},
}

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

	ctx := context.Background()

	for _, sp := range catalog {
		product, err := store.CreateProduct(ctx, db, sp.name, sp.slug, sp.description)
		if err != nil {
			log.Fatalf("Create product %s: %v", sp.slug, err)
		}

		if _, err := store.AddImage(ctx, db, product.ID, sp.imageURL, sp.name, 0); err != nil {
			log.Fatalf("Add image for %s: %v", sp.slug, err)
		}

		for _, sv := range sp.variants {
			price, err := decimal.NewFromString(sv.price)
			if err != nil {
				log.Fatalf("Parse price %q: %v", sv.price, err)
			}

			if _, err := store.CreateVariant(ctx, db, product.ID, sv.sku, price, sv.size, sv.color, sv.inventory); err != nil {
				log.Fatalf("Create variant %s: %v", sv.sku, err)
			}
		}

		log.Printf("Seeded product %s with %d variant(s)", sp.slug, len(sp.variants))
	}
}
