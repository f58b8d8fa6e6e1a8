// Package notify delivers opportunity alerts over Telegram and email.
// Formatting is channel-specific (HTML for Telegram, plain text for email);
// delivery failures on one channel never block the others.
package notify

import (
	"context"
	"log/slog"
)

// Alert kinds, used for logging and metrics labels.
const (
	KindEV  = "ev"
	KindArb = "arb"
)

// Alert is one notification rendered for every channel.
type Alert struct {
	Kind     string
	Subject  string // email subject line
	Telegram string // HTML-formatted Telegram body
	Email    string // plain-text email body
}

// Notifier delivers one alert over a single channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans an alert out to every configured channel. A failing
// channel is logged and skipped; the remaining channels still receive the
// alert.
type Dispatcher struct {
	notifiers []Notifier
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

// Dispatch sends the alert to all channels and returns the number of
// channels that accepted it.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) int {
	sent := 0
	for _, n := range d.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			slog.Error("Alert delivery failed", "channel", n.Name(), "kind", alert.Kind, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Channels returns the number of configured channels.
func (d *Dispatcher) Channels() int {
	return len(d.notifiers)
}
