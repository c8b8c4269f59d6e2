package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetBanner retrieves a banner by its menu name.
func (r *CatalogRepository) GetBanner(ctx context.Context, name string) (_ *domain.Banner, err error) {
	query := `
		SELECT id, name, image, description
		FROM banners
		WHERE name = $1`

	ctx, end := database.TraceQuery(ctx, "GetBanner", query)
	defer func() { end(err) }()

	var b domain.Banner
	err = r.pool.QueryRow(ctx, query, name).Scan(&b.ID, &b.Name, &b.Image, &b.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("banner", name)
		}
		return nil, fmt.Errorf("get banner: %w", err)
	}

	return &b, nil
}

// ListCategories returns all categories in creation order.
func (r *CatalogRepository) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	query := `SELECT id, name FROM categories ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err = rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// ListProducts returns the products of a category in creation order.
func (r *CatalogRepository) ListProducts(ctx context.Context, categoryID int64) (_ []domain.Product, err error) {
	query := `
		SELECT id, name, description, price::text, image, category_id
		FROM products
		WHERE category_id = $1
		ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Image, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// EnsureCategories inserts the named categories that are missing, keeping
// the given order for new rows.
func (r *CatalogRepository) EnsureCategories(ctx context.Context, names []string) (err error) {
	if len(names) == 0 {
		return nil
	}

	query := `
		INSERT INTO categories (name)
		SELECT name FROM unnest($1::text[]) WITH ORDINALITY AS t(name, ord)
		ORDER BY ord
		ON CONFLICT (name) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "EnsureCategories", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, names); err != nil {
		return fmt.Errorf("ensure categories: %w", err)
	}

	return nil
}

// EnsureBanners inserts the banners that are missing. Banners already in the
// table are left as they are.
func (r *CatalogRepository) EnsureBanners(ctx context.Context, banners []domain.Banner) (err error) {
	if len(banners) == 0 {
		return nil
	}

	names := make([]string, len(banners))
	images := make([]string, len(banners))
	descriptions := make([]string, len(banners))
	for i, b := range banners {
		names[i] = b.Name
		images[i] = b.Image
		descriptions[i] = b.Description
	}

	query := `
		INSERT INTO banners (name, image, description)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[])
		ON CONFLICT (name) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "EnsureBanners", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, names, images, descriptions); err != nil {
		return fmt.Errorf("ensure banners: %w", err)
	}

	return nil
}
