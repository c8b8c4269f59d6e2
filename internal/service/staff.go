package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/sender"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/validator"
)

// Replies to staff commands.
const (
	ReplyNotAdmin           = "⚠️ Вы не являетесь администратором."
	ReplyAddCourierUsage    = "⚙️ Неверный формат команды. Используйте /add_delivery_id [ID]."
	ReplyRemoveCourierUsage = "⚙️ Неверный формат команды. Используйте /remove_delivery_id [ID]."
	ReplyCourierExists      = "⚠️ Этот ID уже существует в списке."
	ReplyCourierMissing     = "⚠️ Этот ID не найден в списке."
	ReplyMessageUsage       = "⚙️ Неверный формат команды. Используйте /msg [user_id] [сообщение покупателю]."
	ReplyMessageFailed      = "⚠️ Не удалось отправить сообщение пользователю %d."

	replyCourierAdded   = "ID %d добавлен в список доставки."
	replyCourierRemoved = "ID %d удален из списка доставки."
	replyMessageSent    = "Смс отправлен пользователю %d"
	adminMessageFormat  = "Сообщение от админа: '%s'"
)

// Command is a staff command as typed in chat. Args is everything after the
// command name.
type Command struct {
	ActorID   int64
	ChatID    int64
	MessageID int
	Args      string
}

// StaffService implements the admin commands over the staff registries.
type StaffService struct {
	staff  repository.StaffRepository
	sink   sender.Sink
	logger *slog.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(staff repository.StaffRepository, sink sender.Sink, logger *slog.Logger) *StaffService {
	return &StaffService{
		staff:  staff,
		sink:   sink,
		logger: logger,
	}
}

// IsAdmin reports whether the Telegram id is a registered admin.
func (s *StaffService) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	ok, err := s.staff.Contains(ctx, domain.RoleAdmin, telegramID)
	if err != nil {
		return false, fmt.Errorf("check admin %d: %w", telegramID, err)
	}
	return ok, nil
}

// AddCourier handles /add_delivery_id.
func (s *StaffService) AddCourier(ctx context.Context, cmd Command) error {
	return s.changeCourier(ctx, cmd, ReplyAddCourierUsage, func(id int64) (string, error) {
		added, err := s.staff.Add(ctx, domain.RoleCourier, id)
		if err != nil {
			return "", fmt.Errorf("add courier %d: %w", id, err)
		}
		if !added {
			return ReplyCourierExists, nil
		}
		s.logger.InfoContext(ctx, "courier added",
			slog.Int64("courier_id", id),
			slog.Int64("admin_id", cmd.ActorID),
		)
		return fmt.Sprintf(replyCourierAdded, id), nil
	})
}

// RemoveCourier handles /remove_delivery_id.
func (s *StaffService) RemoveCourier(ctx context.Context, cmd Command) error {
	return s.changeCourier(ctx, cmd, ReplyRemoveCourierUsage, func(id int64) (string, error) {
		removed, err := s.staff.Remove(ctx, domain.RoleCourier, id)
		if err != nil {
			return "", fmt.Errorf("remove courier %d: %w", id, err)
		}
		if !removed {
			return ReplyCourierMissing, nil
		}
		s.logger.InfoContext(ctx, "courier removed",
			slog.Int64("courier_id", id),
			slog.Int64("admin_id", cmd.ActorID),
		)
		return fmt.Sprintf(replyCourierRemoved, id), nil
	})
}

func (s *StaffService) changeCourier(ctx context.Context, cmd Command, usage string, apply func(id int64) (string, error)) error {
	isAdmin, err := s.IsAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return s.reply(ctx, cmd, ReplyNotAdmin)
	}

	id, ok := parseID(strings.TrimSpace(cmd.Args))
	if !ok {
		return s.reply(ctx, cmd, usage)
	}

	text, err := apply(id)
	if err != nil {
		return err
	}
	return s.reply(ctx, cmd, text)
}

// MessageUser handles /msg <user_id> <text>. Commands from non-admins are
// ignored without a reply.
func (s *StaffService) MessageUser(ctx context.Context, cmd Command) error {
	isAdmin, err := s.IsAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return nil
	}

	target, text, ok := parseMessageArgs(cmd.Args)
	if !ok {
		return s.reply(ctx, cmd, ReplyMessageUsage)
	}

	if err := s.sink.SendText(ctx, target, html.EscapeString(fmt.Sprintf(adminMessageFormat, text))); err != nil {
		s.logger.WarnContext(ctx, "failed to deliver admin message",
			slog.Int64("user_id", target),
			slog.Int64("admin_id", cmd.ActorID),
			slog.String("error", err.Error()),
		)
		return s.reply(ctx, cmd, fmt.Sprintf(ReplyMessageFailed, target))
	}

	return s.reply(ctx, cmd, fmt.Sprintf(replyMessageSent, target))
}

// EnsureAdmins registers ids as admins when the admin registry is empty.
func (s *StaffService) EnsureAdmins(ctx context.Context, ids []int64) error {
	admins, err := s.staff.List(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) > 0 {
		return nil
	}

	for _, id := range ids {
		if _, err := s.staff.Add(ctx, domain.RoleAdmin, id); err != nil {
			return fmt.Errorf("add bootstrap admin %d: %w", id, err)
		}
		s.logger.InfoContext(ctx, "bootstrap admin registered", slog.Int64("admin_id", id))
	}
	return nil
}

func (s *StaffService) reply(ctx context.Context, cmd Command, text string) error {
	if err := s.sink.ReplyText(ctx, cmd.ChatID, cmd.MessageID, text); err != nil {
		return fmt.Errorf("reply to staff command: %w", err)
	}
	return nil
}

func parseID(arg string) (int64, bool) {
	if err := validator.Var(arg, "required,number,max=19"); err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseChatID accepts any non-zero chat id. Group and channel chats have
// negative ids.
func parseChatID(arg string) (int64, bool) {
	if err := validator.Var(arg, "required,numeric,max=20"); err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseMessageArgs splits "<chat_id> <text>" on the first run of whitespace.
func parseMessageArgs(args string) (int64, string, bool) {
	args = strings.TrimSpace(args)
	i := strings.IndexFunc(args, unicode.IsSpace)
	if i < 0 {
		return 0, "", false
	}
	text := strings.TrimSpace(args[i:])
	if text == "" {
		return 0, "", false
	}
	id, ok := parseChatID(args[:i])
	if !ok {
		return 0, "", false
	}
	return id, text, true
}
