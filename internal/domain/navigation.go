package domain

// Level is the navigation depth of a menu screen.
type Level int

// Navigation levels.
const (
	LevelHome     Level = 0
	LevelCatalog  Level = 1
	LevelProducts Level = 2
	LevelCart     Level = 3
)

// Menu names that carry meaning beyond selecting a banner.
const (
	MenuCatalog   = "catalog"
	MenuProducts  = "products"
	MenuCart      = "cart"
	MenuAddToCart = "add_to_cart"
	MenuPrevious  = "previous"
	MenuNext      = "next"
)

// CartAction is the mutation applied before the cart is rendered.
type CartAction string

// Cart actions. CartActionNone renders without mutating.
const (
	CartActionNone      CartAction = ""
	CartActionDelete    CartAction = "delete"
	CartActionDecrement CartAction = "decrement"
	CartActionIncrement CartAction = "increment"
)

// ParseCartAction maps a menu name to a cart action. Unknown names such as
// "cart" or "next" render the cart without mutating it.
func ParseCartAction(menu string) CartAction {
	switch a := CartAction(menu); a {
	case CartActionDelete, CartActionDecrement, CartActionIncrement:
		return a
	default:
		return CartActionNone
	}
}

// Request is a navigation request. The set of implementations is closed:
// HomeRequest, CatalogRequest, ProductsRequest and CartRequest.
type Request interface {
	Level() Level
	isRequest()
}

// HomeRequest shows the banner named Menu with the main keyboard.
type HomeRequest struct {
	Menu string
}

// CatalogRequest shows the banner named Menu with one button per category.
type CatalogRequest struct {
	Menu string
}

// ProductsRequest shows one product of a category.
type ProductsRequest struct {
	CategoryID int64
	Page       int
}

// CartRequest applies Action to the user's line for ProductID, then shows one
// line of the user's cart.
type CartRequest struct {
	Action    CartAction
	Page      int
	UserID    int64
	ProductID int64
}

func (HomeRequest) Level() Level     { return LevelHome }
func (CatalogRequest) Level() Level  { return LevelCatalog }
func (ProductsRequest) Level() Level { return LevelProducts }
func (CartRequest) Level() Level     { return LevelCart }

func (HomeRequest) isRequest()     {}
func (CatalogRequest) isRequest()  {}
func (ProductsRequest) isRequest() {}
func (CartRequest) isRequest()     {}
