package service

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/event"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// --- Mock Repositories ---

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) GetBanner(ctx context.Context, name string) (*domain.Banner, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Banner), args.Error(1)
}

func (m *mockCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalogRepository) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogRepository) EnsureCategories(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func (m *mockCatalogRepository) EnsureBanners(ctx context.Context, banners []domain.Banner) error {
	args := m.Called(ctx, banners)
	return args.Error(0)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartRepository) AddOrIncrement(ctx context.Context, userID, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *mockCartRepository) DecrementOrRemove(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Remove(ctx context.Context, userID, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

// memoryCartRepository keeps one row per (user, product) in insertion
// order, mirroring the carts table and its unique key.
type memoryCartRepository struct {
	products map[int64]domain.Product
	lines    []domain.CartLine
}

func newMemoryCartRepository(products ...domain.Product) *memoryCartRepository {
	r := &memoryCartRepository{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memoryCartRepository) find(userID, productID int64) int {
	return slices.IndexFunc(r.lines, func(l domain.CartLine) bool {
		return l.UserID == userID && l.ProductID == productID
	})
}

func (r *memoryCartRepository) ListByUser(_ context.Context, userID int64) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for _, l := range r.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryCartRepository) AddOrIncrement(_ context.Context, userID, productID int64) error {
	if i := r.find(userID, productID); i >= 0 {
		r.lines[i].Quantity++
		return nil
	}
	p, ok := r.products[productID]
	if !ok {
		return apperrors.NotFound("product", strconv.FormatInt(productID, 10))
	}
	r.lines = append(r.lines, domain.CartLine{UserID: userID, ProductID: productID, Quantity: 1, Product: p})
	return nil
}

func (r *memoryCartRepository) DecrementOrRemove(_ context.Context, userID, productID int64) (bool, error) {
	i := r.find(userID, productID)
	if i < 0 {
		return false, nil
	}
	if r.lines[i].Quantity > 1 {
		r.lines[i].Quantity--
		return true, nil
	}
	r.lines = slices.Delete(r.lines, i, i+1)
	return false, nil
}

func (r *memoryCartRepository) Remove(_ context.Context, userID, productID int64) error {
	if i := r.find(userID, productID); i >= 0 {
		r.lines = slices.Delete(r.lines, i, i+1)
	}
	return nil
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockStaffRepository struct {
	mock.Mock
}

func (m *mockStaffRepository) Add(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error) {
	args := m.Called(ctx, role, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStaffRepository) Remove(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error) {
	args := m.Called(ctx, role, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStaffRepository) Contains(ctx context.Context, role domain.StaffRole, telegramID int64) (bool, error) {
	args := m.Called(ctx, role, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStaffRepository) List(ctx context.Context, role domain.StaffRole) ([]int64, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPaymentConfirmationRequested(ctx context.Context, correlationID string, data event.PaymentConfirmationData) error {
	args := m.Called(ctx, correlationID, data)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id int64, name, p string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Price:       price(p),
		Image:       "img-" + name,
		CategoryID:  2,
	}
}

func cartLine(userID int64, p domain.Product, qty int) domain.CartLine {
	return domain.CartLine{
		UserID:    userID,
		ProductID: p.ID,
		Quantity:  qty,
		Product:   p,
	}
}
