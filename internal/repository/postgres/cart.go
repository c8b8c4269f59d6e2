package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByUser returns the user's cart lines joined with their products.
func (r *CartRepository) ListByUser(ctx context.Context, userID int64) (_ []domain.CartLine, err error) {
	query := `
		SELECT c.user_id, c.product_id, c.quantity,
		       p.name, p.description, p.price::text, p.image, p.category_id
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id`

	ctx, end := database.TraceQuery(ctx, "ListCartByUser", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			l     domain.CartLine
			price string
		)
		err = rows.Scan(
			&l.UserID, &l.ProductID, &l.Quantity,
			&l.Product.Name, &l.Product.Description, &price, &l.Product.Image, &l.Product.CategoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		if l.Product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of product %d: %w", l.ProductID, err)
		}
		l.Product.ID = l.ProductID
		lines = append(lines, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart: %w", err)
	}

	return lines, nil
}

// AddOrIncrement inserts a line with quantity 1 or bumps the existing line in
// the same statement.
func (r *CartRepository) AddOrIncrement(ctx context.Context, userID, productID int64) (err error) {
	query := `
		INSERT INTO carts (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = carts.quantity + 1, updated_at = NOW()`

	ctx, end := database.TraceQuery(ctx, "AddOrIncrementCart", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, userID, productID); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", fmt.Sprint(productID))
		}
		return fmt.Errorf("add to cart: %w", err)
	}

	return nil
}

// DecrementOrRemove lowers a quantity above one, or deletes a line at one,
// in a single statement. Both branches see the same snapshot so exactly one
// of them applies.
func (r *CartRepository) DecrementOrRemove(ctx context.Context, userID, productID int64) (_ bool, err error) {
	query := `
		WITH dec AS (
			UPDATE carts SET quantity = quantity - 1, updated_at = NOW()
			WHERE user_id = $1 AND product_id = $2 AND quantity > 1
			RETURNING id
		), del AS (
			DELETE FROM carts
			WHERE user_id = $1 AND product_id = $2 AND quantity <= 1
			RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM dec)`

	ctx, end := database.TraceQuery(ctx, "DecrementOrRemoveCart", query)
	defer func() { end(err) }()

	var stillExists bool
	if err = r.pool.QueryRow(ctx, query, userID, productID).Scan(&stillExists); err != nil {
		return false, fmt.Errorf("decrement cart: %w", err)
	}

	return stillExists, nil
}

// Remove deletes a cart line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) (err error) {
	query := `DELETE FROM carts WHERE user_id = $1 AND product_id = $2`

	ctx, end := database.TraceQuery(ctx, "RemoveCart", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}

	return nil
}
