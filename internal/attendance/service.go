package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/clock"
)

const (
	joinedMsg    = "%s さんが参加しました！"
	leftMsg      = "%s さん、お疲れ様でした！\n勉強時間: %s"
	noSessionMsg = "エラー: 参加記録が見つかりませんでした。"
)

type (
	ProfileResolver interface {
		DisplayName(ctx context.Context, userID string) (string, error)
	}

	// ProfileFunc adapts a function to ProfileResolver.
	ProfileFunc func(ctx context.Context, userID string) (string, error)

	Sender interface {
		Push(ctx context.Context, to, text string) error
	}

	// Event is one inbound chat message, already trimmed.
	Event struct {
		UserID string
		// DisplayName is set by platforms that deliver the sender's name with
		// the message; the profile resolver is skipped then.
		DisplayName string
		ReplyTo     string
		Text        string
	}

	Service struct {
		store    ledger.Store
		profiles ProfileResolver
		sender   Sender
		clock    clock.Interface
		log      *slog.Logger
	}
)

func (f ProfileFunc) DisplayName(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

// NewService wires the attendance state machine. profiles may be nil when every
// event carries its DisplayName.
func NewService(store ledger.Store, profiles ProfileResolver, sender Sender, clock clock.Interface, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		sender:   sender,
		clock:    clock,
		log:      log,
	}
}

func (s *Service) Handle(ctx context.Context, ev Event) (Outcome, error) {
	action := ParseAction(ev.Text)
	if action == ActionNone {
		return OutcomeIgnored, nil
	}

	key, err := s.sessionKey(ctx, ev)
	if err != nil {
		return OutcomeIgnored, err
	}

	s.log.DebugContext(ctx, "handle attendance action", "action", action, "user_id", ev.UserID, "name", key)

	switch action {
	case ActionJoin:
		return s.join(ctx, key, ev.ReplyTo)
	case ActionLeave:
		return s.leave(ctx, key, ev.ReplyTo)
	default:
		return OutcomeIgnored, nil
	}
}

func (s *Service) join(ctx context.Context, key SessionKey, replyTo string) (Outcome, error) {
	if err := s.store.Append(ctx, ledger.NewRow(string(key), s.clock.Now())); err != nil {
		return OutcomeIgnored, fmt.Errorf("append join row: %w", err)
	}
	s.log.InfoContext(ctx, "session opened", "name", key)

	if err := s.sender.Push(ctx, replyTo, fmt.Sprintf(joinedMsg, key)); err != nil {
		return OutcomeJoined, fmt.Errorf("send join reply: %w", err)
	}
	return OutcomeJoined, nil
}

func (s *Service) leave(ctx context.Context, key SessionKey, replyTo string) (Outcome, error) {
	rows, err := s.store.Rows(ctx)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("read ledger: %w", err)
	}

	row, ok := ledger.FindOpen(rows, string(key))
	if !ok {
		s.log.InfoContext(ctx, "no open session", "name", key)
		if err = s.sender.Push(ctx, replyTo, noSessionMsg); err != nil {
			return OutcomeNoOpenSession, fmt.Errorf("send no session reply: %w", err)
		}
		return OutcomeNoOpenSession, nil
	}

	now := s.clock.Now()
	joinedAt, err := row.JoinedAt(now.Location())
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("row %d join time: %w", row.ID, err)
	}

	duration := ledger.FormatDuration(now.Sub(joinedAt))
	if err = s.store.Complete(ctx, row.ID, now.Format(ledger.TimeLayout), duration); err != nil {
		return OutcomeIgnored, fmt.Errorf("complete row %d: %w", row.ID, err)
	}
	s.log.InfoContext(ctx, "session closed", "name", key, "row_id", row.ID, "duration", duration)

	if err = s.sender.Push(ctx, replyTo, fmt.Sprintf(leftMsg, key, duration)); err != nil {
		return OutcomeLeft, fmt.Errorf("send leave reply: %w", err)
	}
	return OutcomeLeft, nil
}

func (s *Service) sessionKey(ctx context.Context, ev Event) (SessionKey, error) {
	name := ev.DisplayName
	if name == "" && s.profiles != nil {
		var err error
		if name, err = s.profiles.DisplayName(ctx, ev.UserID); err != nil {
			return "", fmt.Errorf("resolve display name of %q: %w", ev.UserID, err)
		}
	}
	if name == "" {
		name = UnknownName
	}
	return SessionKey(name), nil
}
