package keyboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/pagination"
)

// parse decodes a button's data, failing the test on error.
func parse(t *testing.T, b domain.Button) Callback {
	t.Helper()
	cb, err := ParseCallback(b.Data)
	require.NoError(t, err, "button %q carries undecodable data %q", b.Text, b.Data)
	return cb
}

func texts(k domain.Keyboard) [][]string {
	out := make([][]string, len(k.Rows))
	for i, row := range k.Rows {
		for _, b := range row {
			out[i] = append(out[i], b.Text)
		}
	}
	return out
}

// --- Callback codec ---

func TestCallback_PackAndParse(t *testing.T) {
	cb := Callback{Level: domain.LevelCart, Menu: "decrement", Category: 0, Page: 3, ProductID: 1234567890}

	data := cb.Pack()
	assert.Equal(t, "menu:3:decrement:0:3:1234567890", data)

	got, err := ParseCallback(data)
	require.NoError(t, err)
	assert.Equal(t, cb, got)
}

func TestParseCallback_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "foreign prefix", data: "shop:0:main:0:0:0"},
		{name: "too few fields", data: "menu:0:main:0:0"},
		{name: "level not a number", data: "menu:x:main:0:0:0"},
		{name: "level out of range", data: "menu:4:main:0:0:0"},
		{name: "negative page", data: "menu:2:next:1:-1:0"},
		{name: "empty menu", data: "menu:0::0:0:0"},
		{name: "product not a number", data: "menu:3:delete:0:1:abc"},
		{name: "over telegram limit", data: "menu:2:next:1:" + strings.Repeat("0", 50) + "1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCallback(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "expected ErrInvalidInput, got: %v", err)
		})
	}
}

func TestCallback_Request(t *testing.T) {
	tests := []struct {
		name string
		cb   Callback
		want domain.Request
	}{
		{
			name: "home",
			cb:   Callback{Level: domain.LevelHome, Menu: "about"},
			want: domain.HomeRequest{Menu: "about"},
		},
		{
			name: "catalog",
			cb:   Callback{Level: domain.LevelCatalog, Menu: "catalog"},
			want: domain.CatalogRequest{Menu: "catalog"},
		},
		{
			name: "products",
			cb:   Callback{Level: domain.LevelProducts, Menu: "next", Category: 2, Page: 2},
			want: domain.ProductsRequest{CategoryID: 2, Page: 2},
		},
		{
			name: "cart opened from menu starts on page one",
			cb:   Callback{Level: domain.LevelCart, Menu: "cart"},
			want: domain.CartRequest{Action: domain.CartActionNone, Page: 1, UserID: 42},
		},
		{
			name: "cart mutation",
			cb:   Callback{Level: domain.LevelCart, Menu: "delete", Page: 2, ProductID: 10},
			want: domain.CartRequest{Action: domain.CartActionDelete, Page: 2, UserID: 42, ProductID: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cb.Request(42))
		})
	}
}

func TestCallback_IsAddToCart(t *testing.T) {
	assert.True(t, Callback{Level: domain.LevelProducts, Menu: domain.MenuAddToCart}.IsAddToCart())
	assert.False(t, Callback{Level: domain.LevelProducts, Menu: domain.MenuNext}.IsAddToCart())
}

// --- Keyboards ---

func TestMain_Layout(t *testing.T) {
	k := Main()

	assert.Equal(t, [][]string{
		{TextProducts, TextCart},
		{TextAbout, TextPayment},
		{TextShipping},
	}, texts(k))

	assert.Equal(t, domain.CatalogRequest{Menu: "catalog"}, parse(t, k.Rows[0][0]).Request(1))
	assert.Equal(t, domain.CartRequest{Page: 1, UserID: 1}, parse(t, k.Rows[0][1]).Request(1))
	assert.Equal(t, domain.HomeRequest{Menu: "shipping"}, parse(t, k.Rows[2][0]).Request(1))
}

func TestCatalog_OneButtonPerCategory(t *testing.T) {
	k := Catalog([]domain.Category{{ID: 1, Name: "Товар 1"}, {ID: 2, Name: "2"}})

	assert.Equal(t, [][]string{{TextBack, TextCart}, {"Товар 1", "2"}}, texts(k))
	assert.Equal(t, domain.HomeRequest{Menu: "main"}, parse(t, k.Rows[0][0]).Request(1))
	assert.Equal(t, domain.ProductsRequest{CategoryID: 2, Page: 1}, parse(t, k.Rows[1][1]).Request(1))
}

func TestProducts_FirstOfTwo(t *testing.T) {
	k := Products(2, 10, pagination.New([]int{10, 11}, 1))

	assert.Equal(t, [][]string{{TextBack, TextCart}, {TextBuy}, {TextNext}}, texts(k))

	buy := parse(t, k.Rows[1][0])
	assert.True(t, buy.IsAddToCart())
	assert.Equal(t, int64(10), buy.ProductID)
	assert.Equal(t, int64(2), buy.Category)
	assert.Equal(t, 1, buy.Page)

	assert.Equal(t, domain.ProductsRequest{CategoryID: 2, Page: 2}, parse(t, k.Rows[2][0]).Request(1))
}

func TestProducts_LastOfTwo(t *testing.T) {
	k := Products(2, 11, pagination.New([]int{10, 11}, 2))

	assert.Equal(t, [][]string{{TextBack, TextCart}, {TextBuy}, {TextPrevious}}, texts(k))
	assert.Equal(t, domain.ProductsRequest{CategoryID: 2, Page: 1}, parse(t, k.Rows[2][0]).Request(1))
}

func TestProducts_SingleProductHasNoNavigation(t *testing.T) {
	k := Products(2, 10, pagination.New([]int{10}, 1))
	assert.Len(t, k.Rows, 2)
}

func TestCart_MiddlePage(t *testing.T) {
	k := Cart(11, pagination.New([]int{10, 11, 12}, 2))

	assert.Equal(t, [][]string{
		{TextDelete, TextDecrement, TextIncrement},
		{TextPrevious, TextNext},
		{TextHome, TextOrder},
	}, texts(k))

	assert.Equal(t,
		domain.CartRequest{Action: domain.CartActionDelete, Page: 2, UserID: 7, ProductID: 11},
		parse(t, k.Rows[0][0]).Request(7))
	assert.Equal(t,
		domain.CartRequest{Action: domain.CartActionIncrement, Page: 2, UserID: 7, ProductID: 11},
		parse(t, k.Rows[0][2]).Request(7))
	assert.Equal(t, domain.CartRequest{Page: 1, UserID: 7}, parse(t, k.Rows[1][0]).Request(7))
	assert.Equal(t, domain.CartRequest{Page: 3, UserID: 7}, parse(t, k.Rows[1][1]).Request(7))
	assert.Equal(t, domain.HomeRequest{Menu: "payment"}, parse(t, k.Rows[2][1]).Request(7))
}

func TestEmptyCartAndBackToCatalog(t *testing.T) {
	assert.Equal(t, [][]string{{TextHome}}, texts(EmptyCart()))
	assert.Equal(t, [][]string{{TextBack, TextCart}}, texts(BackToCatalog()))
}

func TestCallbackData_FitsTelegramLimit(t *testing.T) {
	callbacks := []Callback{
		{Level: domain.LevelCart, Menu: string(domain.CartActionDecrement), Page: 999999, ProductID: 9223372036854775807},
		{Level: domain.LevelProducts, Menu: domain.MenuAddToCart, Category: 9999999999, Page: 999999, ProductID: 9999999999},
	}
	for _, cb := range callbacks {
		assert.LessOrEqual(t, len(cb.Pack()), MaxCallbackDataLen, cb.Pack())
	}
}

func TestGrid(t *testing.T) {
	b := func(s string) domain.Button { return domain.Button{Text: s} }

	rows := grid([]domain.Button{b("a"), b("b"), b("c")}, 2)
	assert.Equal(t, [][]domain.Button{{b("a"), b("b")}, {b("c")}}, rows)

	assert.Empty(t, grid(nil, 2))
}
