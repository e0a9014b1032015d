package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/Roma7-7-7/study-attendance-bot/internal/attendance"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultErrorMsg = "エラーが発生しました。しばらくしてからもう一度お試しください。"
)

type (
	Handler interface {
		Handle(ctx context.Context, ev attendance.Event) (attendance.Outcome, error)
	}

	// Bot feeds Telegram text messages into the attendance flow and delivers
	// replies to Telegram chats.
	Bot struct {
		bot     *tele.Bot
		handler Handler

		log *slog.Logger
	}
)

func NewBot(token string, log *slog.Logger) (*Bot, error) {
	return newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: defaultTimeout},
	}, log)
}

func newBot(pref tele.Settings, log *slog.Logger) (*Bot, error) {
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Bot{
		bot: b,
		log: log,
	}, nil
}

// Handle registers h for incoming text messages. The bot is created before
// the handler because the handler replies through the bot.
func (b *Bot) Handle(h Handler) {
	b.handler = h
	b.bot.Use(b.recover, b.handleError)
	b.bot.Handle(tele.OnText, b.onText)
}

func (b *Bot) Start(ctx context.Context) error {
	if b.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	go func() {
		<-ctx.Done()
		b.log.InfoContext(ctx, "stopping bot")
		b.bot.Stop()
	}()

	b.log.InfoContext(ctx, "bot started")
	b.bot.Start()

	return nil
}

// Push sends text to the chat whose numeric id is to.
func (b *Bot) Push(ctx context.Context, to, text string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", to, err)
	}

	if _, err = b.bot.Send(tele.ChatID(chatID), text); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}

	b.log.DebugContext(ctx, "message sent", "chat_id", chatID)
	return nil
}

func (b *Bot) onText(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()

	ev, ok := eventFrom(c.Message())
	if !ok {
		return nil
	}

	outcome, err := b.handler.Handle(ctx, ev)
	if err != nil {
		return fmt.Errorf("handle message: %w", err)
	}

	b.log.DebugContext(ctx, "message handled", "chat_id", ev.ReplyTo, "outcome", outcome)
	return nil
}

func eventFrom(msg *tele.Message) (attendance.Event, bool) {
	if msg == nil || msg.Sender == nil || msg.Chat == nil {
		return attendance.Event{}, false
	}

	return attendance.Event{
		UserID:      strconv.FormatInt(msg.Sender.ID, 10),
		DisplayName: displayName(msg.Sender),
		ReplyTo:     strconv.FormatInt(msg.Chat.ID, 10),
		Text:        strings.TrimSpace(msg.Text),
	}, true
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = attendance.UnknownName
	}
	return name
}

func (b *Bot) context() (context.Context, func()) {
	return context.WithTimeout(context.Background(), defaultTimeout)
}

func (b *Bot) recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("panic recovered", "error", r)
			}
		}()

		return next(c)
	}
}

func (b *Bot) handleError(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		if err != nil {
			b.log.Error("error occurred",
				"chat_id", c.Chat().ID,
				"error", err.Error(),
			)
			return c.Send(defaultErrorMsg)
		}
		return err
	}
}
