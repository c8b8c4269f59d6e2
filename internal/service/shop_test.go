package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

func newTestShopService() (*ShopService, *mockUserRepository, *mockCartRepository) {
	users := new(mockUserRepository)
	carts := new(mockCartRepository)
	return NewShopService(users, carts, newTestLogger()), users, carts
}

func TestAddToCart_Success(t *testing.T) {
	svc, users, carts := newTestShopService()
	ctx := context.Background()

	phone := "+10000000000"
	users.On("Upsert", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == testUserID && u.FirstName == "Ivan" && u.LastName == "Petrov" && u.Phone == nil
	})).Return(nil)
	carts.On("AddOrIncrement", ctx, testUserID, int64(10)).Return(nil)

	err := svc.AddToCart(ctx, domain.User{ID: testUserID, FirstName: "Ivan", LastName: "Petrov", Phone: &phone}, 10)
	require.NoError(t, err)
	users.AssertExpectations(t)
	carts.AssertExpectations(t)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	svc, users, carts := newTestShopService()
	ctx := context.Background()

	users.On("Upsert", ctx, mock.Anything).Return(nil)
	carts.On("AddOrIncrement", ctx, testUserID, int64(99)).Return(apperrors.NotFound("product", "99"))

	err := svc.AddToCart(ctx, domain.User{ID: testUserID}, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAddToCart_UpsertError(t *testing.T) {
	svc, users, carts := newTestShopService()
	ctx := context.Background()

	users.On("Upsert", ctx, mock.Anything).Return(errors.New("connection refused"))

	err := svc.AddToCart(ctx, domain.User{ID: testUserID}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert user")
	carts.AssertNotCalled(t, "AddOrIncrement", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_InvalidInput(t *testing.T) {
	svc, _, _ := newTestShopService()
	ctx := context.Background()

	err := svc.AddToCart(ctx, domain.User{}, 10)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = svc.AddToCart(ctx, domain.User{ID: testUserID}, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestAddToCart_RepeatedPressesKeepOneLine(t *testing.T) {
	users := new(mockUserRepository)
	users.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	store := newMemoryCartRepository(product(10, "P1", "1"))
	svc := NewShopService(users, store, newTestLogger())
	ctx := context.Background()

	customer := domain.User{ID: testUserID, FirstName: "Ivan"}
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AddToCart(ctx, customer, 10))
	}

	lines, err := store.ListByUser(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	err = svc.AddToCart(ctx, customer, 99)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
