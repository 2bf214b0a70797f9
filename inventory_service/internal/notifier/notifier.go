// Package notifier holds the outbound notification senders used by the dispatcher.
package notifier

import (
	"context"
	"log/slog"

	"github.com/abgdnv/inventory/pkg/messaging/events"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// MessageInfo describes what a message is about. Senders that publish structured events use it.
type MessageInfo struct {
	Kind      events.Kind
	ProductID int64
}

type messageInfoKey struct{}

// WithMessageInfo returns a copy of ctx carrying info.
func WithMessageInfo(ctx context.Context, info MessageInfo) context.Context {
	return context.WithValue(ctx, messageInfoKey{}, info)
}

// MessageInfoFrom returns the MessageInfo stored in ctx, if any.
func MessageInfoFrom(ctx context.Context) (MessageInfo, bool) {
	info, ok := ctx.Value(messageInfoKey{}).(MessageInfo)
	return info, ok
}

// LogNotifier only logs. It is used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, subject, _ string) error {
	info, _ := MessageInfoFrom(ctx)
	n.logger.InfoContext(ctx, "Notification",
		"recipient", recipient, "subject", subject, "kind", info.Kind, "productId", info.ProductID)
	return nil
}
