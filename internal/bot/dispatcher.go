package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/keyboard"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/sender"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/service"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/logger"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/tracing"
)

// Chat commands.
const (
	CommandStart          = "start"
	CommandConfirmPayment = "confirm_payment"
	CommandAddCourier     = "add_delivery_id"
	CommandRemoveCourier  = "remove_delivery_id"
	CommandMessage        = "msg"
)

// Callback toasts for failed button presses.
const (
	NoticeFailed = "⚠️ Не удалось выполнить действие. Попробуйте ещё раз."
	NoticeStale  = "Список изменился, откройте его заново."
)

// Update kinds used in metrics and span names.
const (
	kindMessage  = "message"
	kindCallback = "callback"
	kindOther    = "other"
)

// MenuResolver turns navigation requests into screens.
type MenuResolver interface {
	Resolve(ctx context.Context, req domain.Request) (*domain.Screen, error)
}

// CartAdder handles the Buy button.
type CartAdder interface {
	AddToCart(ctx context.Context, user domain.User, productID int64) error
}

// PaymentConfirmer handles /confirm_payment.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, req service.Requester) (*service.ConfirmationResult, error)
}

// StaffCommands handles the admin commands.
type StaffCommands interface {
	AddCourier(ctx context.Context, cmd service.Command) error
	RemoveCourier(ctx context.Context, cmd service.Command) error
	MessageUser(ctx context.Context, cmd service.Command) error
}

// Services groups the handlers the dispatcher routes to.
type Services struct {
	Menu     MenuResolver
	Shop     CartAdder
	Checkout PaymentConfirmer
	Staff    StaffCommands
}

// Config controls update processing.
type Config struct {
	Workers       int
	UpdateTimeout time.Duration
}

// Dispatcher routes Telegram updates from private chats to the services.
type Dispatcher struct {
	services Services
	sink     sender.Sink
	dedup    repository.UpdateDeduplicator
	cfg      Config
	logger   *slog.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(services Services, sink sender.Sink, dedup repository.UpdateDeduplicator, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		services: services,
		sink:     sink,
		dedup:    dedup,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run processes updates with at most cfg.Workers in flight until the channel
// is closed or ctx is cancelled. Updates already started are allowed to
// finish before Run returns.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	workCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				d.Process(workCtx, update)
				return nil
			})
		}
	}
}

// Process handles one update end to end: de-duplication, tracing, routing
// and error reporting. It never panics.
func (d *Dispatcher) Process(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	kind := updateKind(update)

	if d.cfg.UpdateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.UpdateTimeout)
		defer cancel()
	}
	ctx = logger.WithCorrelationID(ctx, strconv.Itoa(update.UpdateID))
	ctx, span := tracing.StartUpdate(ctx, kind, update.UpdateID)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			logger.WithContext(ctx, d.logger).ErrorContext(ctx, "panic recovered while handling update",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			span.SetStatus(codes.Error, "panic")
			UpdatesTotal.WithLabelValues(kind, "panic").Inc()
		}
	}()

	first, err := d.dedup.MarkSeen(ctx, update.UpdateID)
	if err != nil {
		logger.WithContext(ctx, d.logger).WarnContext(ctx, "update de-duplication unavailable, processing anyway",
			slog.String("error", err.Error()),
		)
	} else if !first {
		UpdatesTotal.WithLabelValues(kind, "duplicate").Inc()
		return
	}

	status := "ok"
	if err := d.Handle(ctx, update); err != nil {
		status = "error"
		tracing.Fail(span, err)
		logger.WithContext(ctx, d.logger).ErrorContext(ctx, "failed to handle update",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}

	UpdatesTotal.WithLabelValues(kind, status).Inc()
	UpdateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Handle routes an update to the matching handler. Updates from group chats
// and unknown commands are ignored.
func (d *Dispatcher) Handle(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil:
		return d.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return d.handleCallback(ctx, update.CallbackQuery)
	default:
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || !msg.Chat.IsPrivate() || msg.From == nil || !msg.IsCommand() {
		return nil
	}
	ctx = logger.WithUserID(ctx, msg.From.ID)
	ctx = logger.WithChatID(ctx, msg.Chat.ID)

	cmd := service.Command{
		ActorID:   msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Args:      msg.CommandArguments(),
	}

	switch msg.Command() {
	case CommandStart:
		return d.start(ctx, msg.Chat.ID)
	case CommandConfirmPayment:
		_, err := d.services.Checkout.ConfirmPayment(ctx, service.Requester{
			ID:        msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
		})
		return err
	case CommandAddCourier:
		return d.services.Staff.AddCourier(ctx, cmd)
	case CommandRemoveCourier:
		return d.services.Staff.RemoveCourier(ctx, cmd)
	case CommandMessage:
		return d.services.Staff.MessageUser(ctx, cmd)
	default:
		return nil
	}
}

func (d *Dispatcher) start(ctx context.Context, chatID int64) error {
	screen, err := d.services.Menu.Resolve(ctx, domain.HomeRequest{Menu: domain.BannerMain})
	if err != nil {
		return fmt.Errorf("resolve start screen: %w", err)
	}
	if err := d.sink.SendScreen(ctx, chatID, screen); err != nil {
		return fmt.Errorf("send start screen: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.From == nil {
		return nil
	}
	ctx = logger.WithUserID(ctx, cq.From.ID)

	if cq.Message == nil || cq.Message.Chat == nil || !cq.Message.Chat.IsPrivate() {
		return d.answer(ctx, cq.ID, "")
	}
	chatID := cq.Message.Chat.ID
	ctx = logger.WithChatID(ctx, chatID)

	cb, err := keyboard.ParseCallback(cq.Data)
	if err != nil {
		logger.WithContext(ctx, d.logger).DebugContext(ctx, "ignoring foreign callback data",
			slog.String("data", cq.Data),
			slog.String("error", err.Error()),
		)
		return d.answer(ctx, cq.ID, "")
	}

	if cb.IsAddToCart() {
		user := domain.User{ID: cq.From.ID, FirstName: cq.From.FirstName, LastName: cq.From.LastName}
		if err := d.services.Shop.AddToCart(ctx, user, cb.ProductID); err != nil {
			return errors.Join(fmt.Errorf("add to cart: %w", err), d.answer(ctx, cq.ID, NoticeFailed))
		}
		return d.answer(ctx, cq.ID, service.AddedToCartNotice)
	}

	screen, err := d.services.Menu.Resolve(ctx, cb.Request(cq.From.ID))
	if errors.Is(err, service.ErrPageOutOfRange) {
		logger.WithContext(ctx, d.logger).InfoContext(ctx, "stale menu button pressed",
			slog.String("data", cq.Data),
		)
		return d.answer(ctx, cq.ID, NoticeStale)
	}
	if err != nil {
		return errors.Join(fmt.Errorf("resolve %q: %w", cq.Data, err), d.answer(ctx, cq.ID, NoticeFailed))
	}

	if err := d.sink.EditScreen(ctx, chatID, cq.Message.MessageID, screen); err != nil {
		return errors.Join(fmt.Errorf("edit screen: %w", err), d.answer(ctx, cq.ID, NoticeFailed))
	}
	return d.answer(ctx, cq.ID, "")
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, text string) error {
	if err := d.sink.AnswerCallback(ctx, callbackID, text); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func updateKind(update tgbotapi.Update) string {
	switch {
	case update.Message != nil:
		return kindMessage
	case update.CallbackQuery != nil:
		return kindCallback
	default:
		return kindOther
	}
}
