package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// AddedToCartNotice acknowledges a Buy button press.
const AddedToCartNotice = "Товар добавлен в корзину."

// ShopService implements the add-to-cart side channel.
type ShopService struct {
	users  repository.UserRepository
	carts  repository.CartRepository
	logger *slog.Logger
}

// NewShopService creates a new shop service.
func NewShopService(users repository.UserRepository, carts repository.CartRepository, logger *slog.Logger) *ShopService {
	return &ShopService{
		users:  users,
		carts:  carts,
		logger: logger,
	}
}

// AddToCart registers the customer and adds one unit of the product to their
// cart. The customer's phone is never touched here.
func (s *ShopService) AddToCart(ctx context.Context, user domain.User, productID int64) error {
	if user.ID == 0 {
		return apperrors.InvalidInput("user id is required")
	}
	if productID <= 0 {
		return apperrors.InvalidInput("product id is required")
	}

	user.Phone = nil
	if err := s.users.Upsert(ctx, &user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	if err := s.carts.AddOrIncrement(ctx, user.ID, productID); err != nil {
		return fmt.Errorf("add product %d to cart: %w", productID, err)
	}
	CartMutations.WithLabelValues("add").Inc()

	s.logger.InfoContext(ctx, "product added to cart",
		slog.Int64("user_id", user.ID),
		slog.Int64("product_id", productID),
	)

	return nil
}
