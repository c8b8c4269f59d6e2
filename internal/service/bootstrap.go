package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
)

// DefaultCategories are created on first start.
var DefaultCategories = []string{"Товар 1", "2", "Товар 3", "Товар 4"}

const paymentBannerText = "Оплата заказа\n" +
	"✅ Реквизиты для оплаты: ХХХХХХХХХХХХХ\n\n" +
	"После оплаты введите команду /confirm_payment"

const shippingBannerText = "Доставка\n" +
	"✅ Курьером по городу\n" +
	"✅ Самовывоз"

// DefaultBanners are created on first start. Existing banners are never
// overwritten, so texts edited in the database survive restarts.
var DefaultBanners = []domain.Banner{
	{Name: domain.BannerMain, Description: "Добро пожаловать!"},
	{Name: domain.BannerAbout, Description: "Магазин\nРежим работы - круглосуточно."},
	{Name: domain.BannerPayment, Description: paymentBannerText},
	{Name: domain.BannerShipping, Description: shippingBannerText},
	{Name: domain.BannerCatalog, Description: "Категории:"},
	{Name: domain.BannerCart, Description: "В корзине ничего нет!"},
}

// Bootstrapper seeds the catalog and the admin registry at startup.
type Bootstrapper struct {
	catalog repository.CatalogRepository
	staff   *StaffService
	logger  *slog.Logger
}

// NewBootstrapper creates a new bootstrapper.
func NewBootstrapper(catalog repository.CatalogRepository, staff *StaffService, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		catalog: catalog,
		staff:   staff,
		logger:  logger,
	}
}

// Seed creates missing default categories and banners and registers the
// bootstrap admins if no admin exists yet. It is safe to run on every start.
func (b *Bootstrapper) Seed(ctx context.Context, adminIDs []int64) error {
	if err := b.catalog.EnsureCategories(ctx, DefaultCategories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := b.catalog.EnsureBanners(ctx, DefaultBanners); err != nil {
		return fmt.Errorf("seed banners: %w", err)
	}
	if err := b.staff.EnsureAdmins(ctx, adminIDs); err != nil {
		return fmt.Errorf("seed admins: %w", err)
	}

	b.logger.InfoContext(ctx, "storefront data seeded",
		slog.Int("categories", len(DefaultCategories)),
		slog.Int("banners", len(DefaultBanners)),
	)
	return nil
}
