package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

func CreateProduct(ctx context.Context, db *sql.DB, name, slug, description string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, slug, description, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, name, slug, description).Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// CreateVariant takes the price as a decimal amount in major units ("24.99")
// and stores integer cents.
func CreateVariant(ctx context.Context, db *sql.DB, productID int64, sku string, price decimal.Decimal, size, color string, inventory int) (*models.Variant, error) {
	variant := &models.Variant{}
	priceCents := price.Mul(decimal.NewFromInt(100)).IntPart()

	query := `
		INSERT INTO variants (product_id, sku, price_cents, size, color, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, product_id, sku, price_cents, size, color, inventory, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, productID, sku, priceCents, size, color, inventory).Scan(
		&variant.ID,
		&variant.ProductID,
		&variant.SKU,
		&variant.PriceCents,
		&variant.Size,
		&variant.Color,
		&variant.Inventory,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}

	return variant, nil
}

func AddImage(ctx context.Context, db *sql.DB, productID int64, url, alt string, position int) (*models.Image, error) {
	image := &models.Image{}

	query := `
		INSERT INTO images (product_id, url, alt, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, url, alt, position`

	err := db.QueryRowContext(ctx, query, productID, url, alt, position).Scan(
		&image.ID,
		&image.ProductID,
		&image.URL,
		&image.Alt,
		&image.Position,
	)
	if err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}

	return image, nil
}

func GetProductBySlug(ctx context.Context, db *sql.DB, slug string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, slug, description, created_at, updated_at
		FROM products
		WHERE slug = $1`

	err := db.QueryRowContext(ctx, query, slug).Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	variants, err := variantsForProducts(ctx, db, []int64{product.ID})
	if err != nil {
		return nil, err
	}
	product.Variants = variants[product.ID]

	images, err := imagesForProducts(ctx, db, []int64{product.ID})
	if err != nil {
		return nil, err
	}
	product.Images = images[product.ID]

	return product, nil
}

func GetVariant(ctx context.Context, db *sql.DB, id int64) (*models.Variant, error) {
	variant := &models.Variant{}

	query := `
		SELECT id, product_id, sku, price_cents, size, color, inventory, created_at, updated_at
		FROM variants
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&variant.ID,
		&variant.ProductID,
		&variant.SKU,
		&variant.PriceCents,
		&variant.Size,
		&variant.Color,
		&variant.Inventory,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVariantNotFound
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}

	return variant, nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, name, slug, description, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	var ids []int64
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Slug,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
		ids = append(ids, product.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) > 0 {
		variants, err := variantsForProducts(ctx, db, ids)
		if err != nil {
			return nil, err
		}
		images, err := imagesForProducts(ctx, db, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			products[i].Variants = variants[products[i].ID]
			products[i].Images = images[products[i].ID]
		}
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func variantsForProducts(ctx context.Context, db *sql.DB, productIDs []int64) (map[int64][]models.Variant, error) {
	query := `
		SELECT id, product_id, sku, price_cents, size, color, inventory, created_at, updated_at
		FROM variants
		WHERE product_id = ANY($1)
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[int64][]models.Variant)
	for rows.Next() {
		var v models.Variant
		err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.SKU,
			&v.PriceCents,
			&v.Size,
			&v.Color,
			&v.Inventory,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return byProduct, nil
}

func imagesForProducts(ctx context.Context, db *sql.DB, productIDs []int64) (map[int64][]models.Image, error) {
	query := `
		SELECT id, product_id, url, alt, position
		FROM images
		WHERE product_id = ANY($1)
		ORDER BY position, id`

	rows, err := db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[int64][]models.Image)
	for rows.Next() {
		var img models.Image
		err := rows.Scan(
			&img.ID,
			&img.ProductID,
			&img.URL,
			&img.Alt,
			&img.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return byProduct, nil
}
