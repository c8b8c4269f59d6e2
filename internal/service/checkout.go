package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/event"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/sender"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/logger"
)

// Replies to /confirm_payment.
const (
	ReplyPaymentConfirmed = "Оплата подтверждена. Ожидайте сообщение от менеджера."
	ReplyUnknownUser      = "Ваши данные не найдены. Попробуйте добавить товары в корзину заново."
	ReplyNoRecipients     = "⚠️ Нет доступных ID для уведомления."
)

const orderNoticeFormat = "Новый заказ от пользователя %s (%s):\n\n" +
	"‼️ ОБРАТИТЕ ВНИМАНИЕ ‼️\n" +
	"Ваш уникальный ключ который ОБЯЗАТЕЛЬНО нужно указать в комментарии при оплате, " +
	"чтобы мы могли вас идентифицировать: %s\n\n"

// Outcome is how a payment confirmation request ended.
type Outcome string

// Confirmation outcomes.
const (
	OutcomeSent         Outcome = "sent"
	OutcomeUnknownUser  Outcome = "unknown_user"
	OutcomeNoRecipients Outcome = "no_recipients"
	OutcomeAborted      Outcome = "aborted"
)

// DeliveryKind is what was sent to a staff member.
type DeliveryKind string

// Delivery kinds.
const (
	DeliveryNotice   DeliveryKind = "notice"
	DeliverySnapshot DeliveryKind = "snapshot"
)

// Requester identifies the customer who sent /confirm_payment.
type Requester struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	ChatID    int64
	MessageID int
}

// Delivery is the result of one send to one staff member.
type Delivery struct {
	Recipient int64
	Role      domain.StaffRole
	Kind      DeliveryKind
	Err       error
}

// ConfirmationResult reports everything a confirmation attempted.
type ConfirmationResult struct {
	Outcome    Outcome
	Token      string
	Deliveries []Delivery
}

// Delivered counts successful deliveries.
func (r *ConfirmationResult) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts failed deliveries.
func (r *ConfirmationResult) Failed() int {
	return len(r.Deliveries) - r.Delivered()
}

// ConfirmationPublisher publishes payment confirmation events.
type ConfirmationPublisher interface {
	PublishPaymentConfirmationRequested(ctx context.Context, correlationID string, data event.PaymentConfirmationData) error
}

// CheckoutService relays payment confirmations to admins and couriers.
type CheckoutService struct {
	users     repository.UserRepository
	carts     repository.CartRepository
	staff     repository.StaffRepository
	menu      *MenuService
	sink      sender.Sink
	publisher ConfirmationPublisher
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service. publisher may be nil
// when event publishing is disabled.
func NewCheckoutService(
	users repository.UserRepository,
	carts repository.CartRepository,
	staff repository.StaffRepository,
	menu *MenuService,
	sink sender.Sink,
	publisher ConfirmationPublisher,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		carts:     carts,
		staff:     staff,
		menu:      menu,
		sink:      sink,
		publisher: publisher,
		logger:    logger,
	}
}

// ConfirmPayment notifies every admin and courier of the requester's order
// and shows them the cart. Individual send failures never stop the loop and
// the requester is told the payment is confirmed once it finishes.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req Requester) (*ConfirmationResult, error) {
	result, err := s.confirm(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment confirmation failed",
			slog.Int64("user_id", req.ID),
			slog.String("error", err.Error()),
		)
		result = &ConfirmationResult{Outcome: OutcomeAborted}
	}
	PaymentConfirmations.WithLabelValues(string(result.Outcome)).Inc()

	reply := ReplyPaymentConfirmed
	switch result.Outcome {
	case OutcomeUnknownUser:
		reply = ReplyUnknownUser
	case OutcomeNoRecipients:
		reply = ReplyNoRecipients
	}
	if err := s.sink.ReplyText(ctx, req.ChatID, req.MessageID, reply); err != nil {
		return result, fmt.Errorf("reply to payment confirmation: %w", err)
	}

	return result, nil
}

func (s *CheckoutService) confirm(ctx context.Context, req Requester) (*ConfirmationResult, error) {
	if _, err := s.users.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &ConfirmationResult{Outcome: OutcomeUnknownUser}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	admins, err := s.staff.List(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	couriers, err := s.staff.List(ctx, domain.RoleCourier)
	if err != nil {
		return nil, fmt.Errorf("list couriers: %w", err)
	}
	if len(admins) == 0 && len(couriers) == 0 {
		return &ConfirmationResult{Outcome: OutcomeNoRecipients}, nil
	}

	result := &ConfirmationResult{
		Outcome: OutcomeSent,
		Token:   uuid.NewString(),
	}
	notice := orderNotice(req, result.Token)

	for _, id := range admins {
		s.record(ctx, result, id, domain.RoleAdmin, DeliveryNotice, s.sink.SendText(ctx, id, notice))
	}
	for _, id := range couriers {
		s.record(ctx, result, id, domain.RoleCourier, DeliveryNotice, s.sink.SendText(ctx, id, notice))
	}

	snapshot, err := s.menu.Resolve(ctx, domain.CartRequest{Page: 1, UserID: req.ID})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render cart snapshot",
			slog.Int64("user_id", req.ID),
			slog.String("error", err.Error()),
		)
	}
	for _, id := range admins {
		s.record(ctx, result, id, domain.RoleAdmin, DeliverySnapshot, s.sendSnapshot(ctx, id, snapshot, err))
	}
	for _, id := range couriers {
		s.record(ctx, result, id, domain.RoleCourier, DeliverySnapshot, s.sendSnapshot(ctx, id, snapshot, err))
	}

	s.logger.InfoContext(ctx, "payment confirmation broadcast",
		slog.Int64("user_id", req.ID),
		slog.String("token", result.Token),
		slog.Int("delivered", result.Delivered()),
		slog.Int("failed", result.Failed()),
	)

	s.publish(ctx, req, result, len(admins), len(couriers))

	return result, nil
}

func (s *CheckoutService) sendSnapshot(ctx context.Context, chatID int64, snapshot *domain.Screen, renderErr error) error {
	if renderErr != nil {
		return fmt.Errorf("render cart snapshot: %w", renderErr)
	}
	return s.sink.SendSnapshot(ctx, chatID, snapshot)
}

func (s *CheckoutService) record(ctx context.Context, r *ConfirmationResult, recipient int64, role domain.StaffRole, kind DeliveryKind, err error) {
	r.Deliveries = append(r.Deliveries, Delivery{
		Recipient: recipient,
		Role:      role,
		Kind:      kind,
		Err:       err,
	})

	status := "ok"
	if err != nil {
		status = "error"
		s.logger.WarnContext(ctx, "failed to deliver payment confirmation",
			slog.Int64("recipient", recipient),
			slog.String("role", string(role)),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
	BroadcastDeliveries.WithLabelValues(string(role), string(kind), status).Inc()
}

func (s *CheckoutService) publish(ctx context.Context, req Requester, result *ConfirmationResult, admins, couriers int) {
	if s.publisher == nil {
		return
	}

	data := event.PaymentConfirmationData{
		Token:       result.Token,
		UserID:      req.ID,
		Username:    req.Username,
		Admins:      admins,
		Couriers:    couriers,
		Delivered:   result.Delivered(),
		Undelivered: result.Failed(),
	}

	lines, err := s.carts.ListByUser(ctx, req.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load cart for confirmation event",
			slog.Int64("user_id", req.ID),
			slog.String("error", err.Error()),
		)
	} else {
		data.LineCount = len(lines)
		data.CartTotal = domain.FormatMoney(domain.CartTotal(lines))
	}

	if err := s.publisher.PublishPaymentConfirmationRequested(ctx, logger.CorrelationIDFromContext(ctx), data); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.confirmation_requested event",
			slog.String("token", result.Token),
			slog.String("error", err.Error()),
		)
	}
}

// orderNotice builds the staff notice. Names are user controlled and the
// notice is sent as HTML.
func orderNotice(req Requester, token string) string {
	fullName := domain.User{FirstName: req.FirstName, LastName: req.LastName}.FullName()
	handle := "id " + strconv.FormatInt(req.ID, 10)
	if req.Username != "" {
		handle = "@" + req.Username
	}
	return fmt.Sprintf(orderNoticeFormat, html.EscapeString(fullName), html.EscapeString(handle), token)
}
