// Package notify delivers alerts to chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mselser95/sharpline/internal/alerts"
	"go.uber.org/zap"
)

// Min interval between two messages to the same chat, Telegram allows roughly 30 per minute.
const defaultSendInterval = 2 * time.Second

// Sender is the subset of the bot API used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramConfig holds configuration for the Telegram notifier.
type TelegramConfig struct {
	Token       string
	ChatID      int64
	MinPriority string        // alerts below this priority are not sent, default HIGH
	Interval    time.Duration // spacing between messages
	Logger      *zap.Logger
}

// TelegramNotifier sends one message per qualifying alert.
type TelegramNotifier struct {
	sender      Sender
	chatID      int64
	minPriority string
	interval    time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier connects to the bot API and checks the token.
func NewTelegramNotifier(cfg *TelegramConfig) (*TelegramNotifier, error) {
	if cfg.Token == "" || cfg.ChatID == 0 {
		return nil, errors.New("telegram token and chat id are required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	me, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("get bot info: %w", err)
	}

	n := NewTelegramNotifierWithSender(bot, cfg)
	n.logger.Info("telegram-notifier-initialized",
		zap.String("bot", me.UserName),
		zap.Int64("chat-id", cfg.ChatID))

	return n, nil
}

// NewTelegramNotifierWithSender builds a notifier on an existing sender.
func NewTelegramNotifierWithSender(sender Sender, cfg *TelegramConfig) *TelegramNotifier {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	minPriority := cfg.MinPriority
	if minPriority == "" {
		minPriority = alerts.PriorityHigh
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSendInterval
	}

	return &TelegramNotifier{
		sender:      sender,
		chatID:      cfg.ChatID,
		minPriority: minPriority,
		interval:    interval,
		logger:      logger,
	}
}

// Notify sends every alert at or above the minimum priority and returns how many were sent.
// A failed message is logged and skipped; only cancellation stops the loop.
func (n *TelegramNotifier) Notify(ctx context.Context, exp *alerts.Export) (int, error) {
	maxRank := alerts.PriorityRank(n.minPriority)
	sent := 0

	for i := range exp.Alerts {
		a := &exp.Alerts[i]
		if alerts.PriorityRank(a.Priority) > maxRank {
			continue
		}

		err := n.wait(ctx)
		if err != nil {
			return sent, err
		}

		msg := tgbotapi.NewMessage(n.chatID, FormatAlert(a, exp.Week))
		msg.DisableWebPagePreview = true

		_, err = n.sender.Send(msg)
		if err != nil {
			NotificationsFailedTotal.Inc()
			n.logger.Warn("telegram-send-failed",
				zap.String("alert-id", a.ID),
				zap.String("type", a.Type),
				zap.Error(err))
			continue
		}

		NotificationsSentTotal.Inc()
		sent++
	}

	n.logger.Info("telegram-alerts-sent",
		zap.Int("sent", sent),
		zap.Int("week", exp.Week))

	return sent, nil
}

func (n *TelegramNotifier) wait(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < n.interval {
		select {
		case <-time.After(n.interval - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n.lastSend = time.Now()
	return nil
}

// FormatAlert renders an alert as a plain-text chat message.
func FormatAlert(a *alerts.Alert, week int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Week %d\n", a.Priority, week)
	fmt.Fprintf(&b, "%s\n", a.Title)
	fmt.Fprintf(&b, "%s\n", a.Game)
	if a.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Description)
	}
	if a.Reasoning != "" {
		fmt.Fprintf(&b, "%s\n", a.Reasoning)
	}
	return strings.TrimRight(b.String(), "\n")
}
