package repository

import (
	"context"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
)

// CatalogRepository defines read access to banners, categories and products,
// plus the idempotent seeding used at startup.
type CatalogRepository interface {
	// GetBanner retrieves the banner with the given name.
	GetBanner(ctx context.Context, name string) (*domain.Banner, error)

	// ListCategories returns all categories ordered by id.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListProducts returns the products of a category ordered by id.
	ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error)

	// EnsureCategories inserts categories that do not exist yet.
	EnsureCategories(ctx context.Context, names []string) error

	// EnsureBanners inserts banners that do not exist yet. Existing banners
	// keep their image and description.
	EnsureBanners(ctx context.Context, banners []domain.Banner) error
}

// CartRepository defines the interface for cart persistence. Every mutation
// is a single atomic statement.
type CartRepository interface {
	// ListByUser returns the user's cart lines, with products, in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)

	// AddOrIncrement creates the line with quantity 1 or raises its quantity by one.
	AddOrIncrement(ctx context.Context, userID, productID int64) error

	// DecrementOrRemove lowers the quantity by one, removing the line when it
	// would reach zero. It reports whether the line still exists.
	DecrementOrRemove(ctx context.Context, userID, productID int64) (bool, error)

	// Remove deletes the line. Removing a missing line is not an error.
	Remove(ctx context.Context, userID, productID int64) error
}

// UserRepository defines persistence for customers.
type UserRepository interface {
	// Upsert registers the user or refreshes their names. A nil phone leaves
	// a stored phone untouched.
	Upsert(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by Telegram id.
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
}

// StaffRepository defines the admin and courier registries.
type StaffRepository interface {
	// Add registers the id under the role and reports whether it was new.
	Add(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error)

	// Remove unregisters the id and reports whether it was present.
	Remove(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error)

	// Contains reports whether the id is registered under the role.
	Contains(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error)

	// List returns the ids registered under the role in insertion order.
	List(ctx context.Context, role domain.StaffRole) ([]int64, error)
}

// UpdateDeduplicator remembers which Telegram updates were already handled.
type UpdateDeduplicator interface {
	// MarkSeen records the update id and reports whether this is the first time
	// it was seen.
	MarkSeen(ctx context.Context, updateID int) (bool, error)
}
