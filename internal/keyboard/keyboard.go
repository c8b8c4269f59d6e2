package keyboard

import "github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"

// Button labels.
const (
	TextProducts  = "Товары 🍕"
	TextCart      = "Корзина 🛒"
	TextAbout     = "О нас ℹ️"
	TextPayment   = "Оплата 💰"
	TextShipping  = "Доставка ⛵"
	TextBack      = "Назад"
	TextBuy       = "Купить 💵"
	TextPrevious  = "◀ Пред."
	TextNext      = "След. ▶"
	TextDelete    = "Удалить"
	TextDecrement = "-1"
	TextIncrement = "+1"
	TextHome      = "На главную 🏠"
	TextOrder     = "Заказать 📦"
)

// Pager is the pagination state needed to lay out prev/next buttons.
type Pager interface {
	Page() int
	HasPrevious() bool
	HasNext() bool
}

func button(text string, cb Callback) domain.Button {
	return domain.Button{Text: text, Data: cb.Pack()}
}

// grid lays buttons out in rows of size.
func grid(buttons []domain.Button, size int) [][]domain.Button {
	rows := make([][]domain.Button, 0, (len(buttons)+size-1)/size)
	for len(buttons) > size {
		rows = append(rows, buttons[:size:size])
		buttons = buttons[size:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}

// Main builds the home keyboard.
func Main() domain.Keyboard {
	buttons := []domain.Button{
		button(TextProducts, Callback{Level: domain.LevelCatalog, Menu: domain.MenuCatalog}),
		button(TextCart, Callback{Level: domain.LevelCart, Menu: domain.MenuCart}),
		button(TextAbout, Callback{Level: domain.LevelHome, Menu: domain.BannerAbout}),
		button(TextPayment, Callback{Level: domain.LevelHome, Menu: domain.BannerPayment}),
		button(TextShipping, Callback{Level: domain.LevelHome, Menu: domain.BannerShipping}),
	}
	return domain.Keyboard{Rows: grid(buttons, 2)}
}

// Catalog builds the category list keyboard.
func Catalog(categories []domain.Category) domain.Keyboard {
	buttons := []domain.Button{
		button(TextBack, Callback{Level: domain.LevelHome, Menu: domain.BannerMain}),
		button(TextCart, Callback{Level: domain.LevelCart, Menu: domain.MenuCart}),
	}
	for _, c := range categories {
		buttons = append(buttons, button(c.Name, Callback{
			Level:    domain.LevelProducts,
			Menu:     domain.MenuProducts,
			Category: c.ID,
			Page:     1,
		}))
	}
	return domain.Keyboard{Rows: grid(buttons, 2)}
}

// Products builds the keyboard under a single product.
func Products(categoryID, productID int64, p Pager) domain.Keyboard {
	rows := [][]domain.Button{
		{
			button(TextBack, Callback{Level: domain.LevelCatalog, Menu: domain.MenuCatalog}),
			button(TextCart, Callback{Level: domain.LevelCart, Menu: domain.MenuCart}),
		},
		{
			button(TextBuy, Callback{
				Level:     domain.LevelProducts,
				Menu:      domain.MenuAddToCart,
				Category:  categoryID,
				Page:      p.Page(),
				ProductID: productID,
			}),
		},
	}

	nav := make([]domain.Button, 0, 2)
	if p.HasPrevious() {
		nav = append(nav, button(TextPrevious, Callback{
			Level: domain.LevelProducts, Menu: domain.MenuPrevious, Category: categoryID, Page: p.Page() - 1,
		}))
	}
	if p.HasNext() {
		nav = append(nav, button(TextNext, Callback{
			Level: domain.LevelProducts, Menu: domain.MenuNext, Category: categoryID, Page: p.Page() + 1,
		}))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return domain.Keyboard{Rows: rows}
}

// Cart builds the keyboard under a cart line.
func Cart(productID int64, p Pager) domain.Keyboard {
	page := p.Page()
	rows := [][]domain.Button{
		{
			button(TextDelete, Callback{Level: domain.LevelCart, Menu: string(domain.CartActionDelete), Page: page, ProductID: productID}),
			button(TextDecrement, Callback{Level: domain.LevelCart, Menu: string(domain.CartActionDecrement), Page: page, ProductID: productID}),
			button(TextIncrement, Callback{Level: domain.LevelCart, Menu: string(domain.CartActionIncrement), Page: page, ProductID: productID}),
		},
	}

	nav := make([]domain.Button, 0, 2)
	if p.HasPrevious() {
		nav = append(nav, button(TextPrevious, Callback{Level: domain.LevelCart, Menu: domain.MenuPrevious, Page: page - 1}))
	}
	if p.HasNext() {
		nav = append(nav, button(TextNext, Callback{Level: domain.LevelCart, Menu: domain.MenuNext, Page: page + 1}))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []domain.Button{
		button(TextHome, Callback{Level: domain.LevelHome, Menu: domain.BannerMain}),
		button(TextOrder, Callback{Level: domain.LevelHome, Menu: domain.BannerPayment}),
	})

	return domain.Keyboard{Rows: rows}
}

// EmptyCart builds the keyboard shown with the empty cart banner.
func EmptyCart() domain.Keyboard {
	return domain.Keyboard{Rows: [][]domain.Button{
		{button(TextHome, Callback{Level: domain.LevelHome, Menu: domain.BannerMain})},
	}}
}

// BackToCatalog builds the keyboard shown for a category with no products.
func BackToCatalog() domain.Keyboard {
	return domain.Keyboard{Rows: [][]domain.Button{
		{
			button(TextBack, Callback{Level: domain.LevelCatalog, Menu: domain.MenuCatalog}),
			button(TextCart, Callback{Level: domain.LevelCart, Menu: domain.MenuCart}),
		},
	}}
}
