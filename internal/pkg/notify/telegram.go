package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to avoid 429 Too Many
// Requests (~30/min limit per chat).
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends alerts to one or more chats through a buffered
// queue. Send never blocks the cycle: when the queue is full the alert is
// dropped with an error.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64

	mu       sync.Mutex
	lastSend time.Time

	queue     chan Alert
	queueDone chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTelegramNotifier authorizes the bot and starts the send worker.
func NewTelegramNotifier(token string, chatIDs []int64) (*TelegramNotifier, error) {
	if token == "" || len(chatIDs) == 0 {
		return nil, fmt.Errorf("telegram token and at least one chat id are required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatIDs:   chatIDs,
		queue:     make(chan Alert, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	n.wg.Add(1)
	go n.worker()

	slog.Info("Telegram notifier initialized", "chats", len(chatIDs))
	return n, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// Send queues the alert without blocking.
func (n *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}

	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- alert:
		return nil
	default:
		return fmt.Errorf("telegram queue is full, alert dropped")
	}
}

// QueueLen returns the current number of queued alerts.
func (n *TelegramNotifier) QueueLen() int {
	if n == nil || n.queue == nil {
		return 0
	}
	return len(n.queue)
}

// Stop stops the worker after draining the remaining queue.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
	n.wg.Wait()
}

func (n *TelegramNotifier) worker() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining alerts before exit.
			for {
				select {
				case alert := <-n.queue:
					n.deliver(alert)
				default:
					close(n.queueDone)
					return
				}
			}
		case alert := <-n.queue:
			n.deliver(alert)
		}
	}
}

// deliver sends the alert to every chat, pacing sends to the rate limit.
func (n *TelegramNotifier) deliver(alert Alert) {
	for _, chatID := range n.chatIDs {
		n.waitSendInterval()

		msg := tgbotapi.NewMessage(chatID, alert.Telegram)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.bot.Send(msg); err != nil {
			slog.Error("Telegram send failed", "chat_id", chatID, "kind", alert.Kind, "error", err)
			continue
		}
		slog.Debug("Telegram alert sent", "chat_id", chatID, "kind", alert.Kind, "queue_len", len(n.queue))
	}
}

func (n *TelegramNotifier) waitSendInterval() {
	n.mu.Lock()
	elapsed := time.Since(n.lastSend)
	if elapsed < telegramSendInterval {
		wait := telegramSendInterval - elapsed
		n.mu.Unlock()
		select {
		case <-n.ctx.Done():
			// Draining after stop, send immediately.
		case <-time.After(wait):
		}
		n.mu.Lock()
	}
	n.lastSend = time.Now()
	n.mu.Unlock()
}
