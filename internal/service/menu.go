package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/keyboard"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/pagination"
)

// ErrPageOutOfRange is returned when a request points past the last page,
// typically from a stale button.
var ErrPageOutOfRange = errors.New("page out of range")

// EmptyCategoryCaption is shown for a category without products.
const EmptyCategoryCaption = "В этой категории пока нет товаров."

// MenuService resolves navigation requests into screens.
type MenuService struct {
	catalog repository.CatalogRepository
	carts   repository.CartRepository
	logger  *slog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(catalog repository.CatalogRepository, carts repository.CartRepository, logger *slog.Logger) *MenuService {
	return &MenuService{
		catalog: catalog,
		carts:   carts,
		logger:  logger,
	}
}

// Resolve produces the screen for a navigation request. Cart requests apply
// their action before the cart is read back.
func (s *MenuService) Resolve(ctx context.Context, req domain.Request) (*domain.Screen, error) {
	var (
		screen *domain.Screen
		err    error
	)

	switch r := req.(type) {
	case domain.HomeRequest:
		screen, err = s.home(ctx, r)
	case domain.CatalogRequest:
		screen, err = s.catalogMenu(ctx, r)
	case domain.ProductsRequest:
		screen, err = s.products(ctx, r)
	case domain.CartRequest:
		screen, err = s.cart(ctx, r)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported navigation request %T", req))
	}

	level := strconv.Itoa(int(req.Level()))
	if err != nil {
		ScreensResolved.WithLabelValues(level, "error").Inc()
		return nil, err
	}
	ScreensResolved.WithLabelValues(level, "ok").Inc()
	return screen, nil
}

func (s *MenuService) banner(ctx context.Context, name string) (*domain.Banner, error) {
	banner, err := s.catalog.GetBanner(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get banner %s: %w", name, err)
	}
	return banner, nil
}

func (s *MenuService) home(ctx context.Context, r domain.HomeRequest) (*domain.Screen, error) {
	banner, err := s.banner(ctx, r.Menu)
	if err != nil {
		return nil, err
	}
	return &domain.Screen{
		Image:    banner.Image,
		Caption:  banner.Description,
		Keyboard: keyboard.Main(),
	}, nil
}

func (s *MenuService) catalogMenu(ctx context.Context, r domain.CatalogRequest) (*domain.Screen, error) {
	banner, err := s.banner(ctx, r.Menu)
	if err != nil {
		return nil, err
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &domain.Screen{
		Image:    banner.Image,
		Caption:  banner.Description,
		Keyboard: keyboard.Catalog(categories),
	}, nil
}

func (s *MenuService) products(ctx context.Context, r domain.ProductsRequest) (*domain.Screen, error) {
	products, err := s.catalog.ListProducts(ctx, r.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", r.CategoryID, err)
	}

	if len(products) == 0 {
		banner, err := s.banner(ctx, domain.BannerCatalog)
		if err != nil {
			return nil, err
		}
		return &domain.Screen{
			Image:    banner.Image,
			Caption:  EmptyCategoryCaption,
			Keyboard: keyboard.BackToCatalog(),
		}, nil
	}

	p := pagination.New(products, r.Page)
	if !p.InRange() {
		return nil, fmt.Errorf("products page %d of %d: %w", r.Page, p.Pages(), ErrPageOutOfRange)
	}
	product := p.Items()[0]

	return &domain.Screen{
		Image:    product.Image,
		Caption:  productCaption(product, p.Page(), p.Pages()),
		Keyboard: keyboard.Products(r.CategoryID, product.ID, p),
	}, nil
}

func productCaption(p domain.Product, page, pages int) string {
	return fmt.Sprintf("%s\n\nОписание: %s\n\nСтоимость: %s$\nТовар %d из %d",
		p.Name, p.Description, domain.FormatMoney(p.Price), page, pages)
}

func (s *MenuService) cart(ctx context.Context, r domain.CartRequest) (*domain.Screen, error) {
	page := r.Page

	switch r.Action {
	case domain.CartActionDelete:
		if err := s.carts.Remove(ctx, r.UserID, r.ProductID); err != nil {
			return nil, fmt.Errorf("remove cart line: %w", err)
		}
	case domain.CartActionDecrement:
		exists, err := s.carts.DecrementOrRemove(ctx, r.UserID, r.ProductID)
		if err != nil {
			return nil, fmt.Errorf("decrement cart line: %w", err)
		}
		if !exists && page > 1 {
			page--
		}
	case domain.CartActionIncrement:
		if err := s.carts.AddOrIncrement(ctx, r.UserID, r.ProductID); err != nil {
			return nil, fmt.Errorf("increment cart line: %w", err)
		}
	}
	if r.Action != domain.CartActionNone {
		CartMutations.WithLabelValues(string(r.Action)).Inc()
	}

	lines, err := s.carts.ListByUser(ctx, r.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	if len(lines) == 0 {
		banner, err := s.banner(ctx, domain.BannerCart)
		if err != nil {
			return nil, err
		}
		return &domain.Screen{
			Image:    banner.Image,
			Caption:  banner.Description,
			Keyboard: keyboard.EmptyCart(),
		}, nil
	}

	// One step back only; a page further out is reported as out of range.
	if r.Action == domain.CartActionDelete && page > 1 && page > pagination.New(lines, page).Pages() {
		page--
	}

	p := pagination.New(lines, page)
	if !p.InRange() {
		s.logger.WarnContext(ctx, "cart page out of range",
			slog.Int64("user_id", r.UserID),
			slog.Int("page", page),
			slog.Int("pages", p.Pages()),
		)
		return nil, fmt.Errorf("cart page %d of %d: %w", page, p.Pages(), ErrPageOutOfRange)
	}
	line := p.Items()[0]

	return &domain.Screen{
		Image:    line.Product.Image,
		Caption:  cartCaption(line, domain.CartTotal(lines), p.Page(), p.Pages()),
		Keyboard: keyboard.Cart(line.ProductID, p),
	}, nil
}

func cartCaption(line domain.CartLine, total decimal.Decimal, page, pages int) string {
	return fmt.Sprintf("%s\n%s$ x %d = %s$\nТовар %d из %d в корзине.\nОбщая стоимость товаров в корзине %s",
		line.Product.Name,
		domain.FormatMoney(line.Product.Price),
		line.Quantity,
		domain.FormatMoney(line.Subtotal()),
		page, pages,
		domain.FormatMoney(total),
	)
}
