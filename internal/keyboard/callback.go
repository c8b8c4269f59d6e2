package keyboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/validator"
)

// Prefix marks callback data produced by this package.
const Prefix = "menu"

// MaxCallbackDataLen is the Telegram limit for inline button data, in bytes.
const MaxCallbackDataLen = 64

const fieldSep = ":"

// Callback is the payload carried by every menu button.
type Callback struct {
	Level     domain.Level `validate:"gte=0,lte=3"`
	Menu      string       `validate:"required,max=32,excludes=:"`
	Category  int64        `validate:"gte=0"`
	Page      int          `validate:"gte=0"`
	ProductID int64        `validate:"gte=0"`
}

// Pack encodes the callback as "menu:level:menu:category:page:product".
func (c Callback) Pack() string {
	return strings.Join([]string{
		Prefix,
		strconv.Itoa(int(c.Level)),
		c.Menu,
		strconv.FormatInt(c.Category, 10),
		strconv.Itoa(c.Page),
		strconv.FormatInt(c.ProductID, 10),
	}, fieldSep)
}

// IsAddToCart reports whether the button is the add-to-cart side channel
// rather than a navigation.
func (c Callback) IsAddToCart() bool {
	return c.Menu == domain.MenuAddToCart
}

// ParseCallback decodes data produced by Pack. Data longer than Telegram
// allows cannot come from a real button and is rejected.
func ParseCallback(data string) (Callback, error) {
	if len(data) > MaxCallbackDataLen {
		return Callback{}, apperrors.InvalidInput(fmt.Sprintf("callback data exceeds %d bytes", MaxCallbackDataLen))
	}
	parts := strings.Split(data, fieldSep)
	if len(parts) != 6 || parts[0] != Prefix {
		return Callback{}, apperrors.InvalidInput(fmt.Sprintf("unrecognised callback data %q", data))
	}

	level, err := strconv.Atoi(parts[1])
	if err != nil {
		return Callback{}, apperrors.InvalidInput("callback level is not a number")
	}
	category, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Callback{}, apperrors.InvalidInput("callback category is not a number")
	}
	page, err := strconv.Atoi(parts[4])
	if err != nil {
		return Callback{}, apperrors.InvalidInput("callback page is not a number")
	}
	productID, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return Callback{}, apperrors.InvalidInput("callback product id is not a number")
	}

	cb := Callback{
		Level:     domain.Level(level),
		Menu:      parts[2],
		Category:  category,
		Page:      page,
		ProductID: productID,
	}
	if err := validator.Validate(cb); err != nil {
		return Callback{}, apperrors.InvalidInput(err.Error())
	}

	return cb, nil
}

// Request converts a navigation callback into a typed request on behalf of
// userID. Pages below 1 are treated as the first page.
func (c Callback) Request(userID int64) domain.Request {
	page := max(c.Page, 1)

	switch c.Level {
	case domain.LevelHome:
		return domain.HomeRequest{Menu: c.Menu}
	case domain.LevelCatalog:
		return domain.CatalogRequest{Menu: c.Menu}
	case domain.LevelProducts:
		return domain.ProductsRequest{CategoryID: c.Category, Page: page}
	default:
		return domain.CartRequest{
			Action:    domain.ParseCartAction(c.Menu),
			Page:      page,
			UserID:    userID,
			ProductID: c.ProductID,
		}
	}
}
