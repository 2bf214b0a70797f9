package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abgdnv/inventory/inventory_service/internal/notifier"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Notifier delivers one rendered message. Implementations live in the notifier package.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// DispatcherConfig carries the injected notification settings.
type DispatcherConfig struct {
	Recipient string
	// Timeout bounds each send. Zero means no bound beyond the notifier's own.
	Timeout time.Duration
}

// Dispatcher renders effects into messages and hands them to the Notifier.
// Every failure is logged and counted, never returned.
type Dispatcher struct {
	notifier Notifier
	cfg      DispatcherConfig
	logger   *slog.Logger
	now      func() time.Time

	sent   metric.Int64Counter
	failed metric.Int64Counter
	alerts metric.Int64Counter
}

// NewDispatcher creates a Dispatcher. A nil notifier turns every dispatch into a logged skip.
func NewDispatcher(n Notifier, cfg DispatcherConfig, logger *slog.Logger, meter metric.Meter) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		cfg:      cfg,
		logger:   logger.With("component", "dispatcher"),
		now:      time.Now,
	}
	d.sent, _ = meter.Int64Counter("notifications_sent", metric.WithDescription("Notifications handed to the notifier"))
	d.failed, _ = meter.Int64Counter("notifications_failed", metric.WithDescription("Notifications the notifier failed to accept"))
	d.alerts, _ = meter.Int64Counter("low_stock_alerts", metric.WithDescription("Low stock alerts raised"))
	return d
}

// Dispatch executes effects in order. It uses a context detached from ctx's cancellation,
// so a disconnected client does not drop notifications for an already committed change.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []Effect) {
	if len(effects) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, eff := range effects {
		d.dispatchOne(ctx, eff)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, eff Effect) {
	kind, productID := describe(eff)
	kindAttr := metric.WithAttributes(attribute.String("kind", string(kind)))
	if kind == events.KindLowStock {
		d.alerts.Add(ctx, 1)
	}

	if d.notifier == nil || strings.TrimSpace(d.cfg.Recipient) == "" {
		d.logger.InfoContext(ctx, "Skipping notification, notifier or recipient not configured",
			"kind", kind, "productId", productID)
		return
	}

	subject, body, err := d.render(eff)
	if err != nil {
		d.failed.Add(ctx, 1, kindAttr)
		d.logger.WarnContext(ctx, "Failed to render notification", "kind", kind, "productId", productID, "error", err)
		return
	}

	sendCtx := notifier.WithMessageInfo(ctx, notifier.MessageInfo{Kind: kind, ProductID: productID})
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, d.cfg.Timeout)
		defer cancel()
	}
	if err := d.notifier.Send(sendCtx, d.cfg.Recipient, subject, body); err != nil {
		d.failed.Add(ctx, 1, kindAttr)
		d.logger.WarnContext(ctx, "Failed to send notification", "kind", kind, "productId", productID, "error", err)
		return
	}
	d.sent.Add(ctx, 1, kindAttr)
	d.logger.InfoContext(ctx, "Notification sent", "kind", kind, "productId", productID)
}

func (d *Dispatcher) render(eff Effect) (subject, body string, err error) {
	year := d.now().Year()
	switch e := eff.(type) {
	case NotifyOrderPlaced:
		body, err = renderEmail(orderPlacedTmpl, emailView{
			Title:   "Order Placed",
			Banner:  "Inventory Notification",
			Accent:  "#1e88e5",
			Heading: "New Order Placed",
			Intro:   "A new order has been placed in your inventory system. Here are the details:",
			Year:    year,
			Data:    e,
		})
		return "Order Placed: " + e.Name, body, err
	case NotifyLowStock:
		body, err = renderEmail(lowStockTmpl, emailView{
			Title:   "Low Stock Alert",
			Banner:  "Low Stock Alert",
			Accent:  "#e65100",
			Heading: "Product Reaching Minimum Level",
			Intro:   "One of your products has reached the low stock threshold. Please review and restock soon.",
			Year:    year,
			Data:    e,
		})
		return "Low Stock Alert: " + e.Name, body, err
	default:
		return "", "", fmt.Errorf("unknown effect %T", eff)
	}
}

func describe(eff Effect) (events.Kind, int64) {
	switch e := eff.(type) {
	case NotifyOrderPlaced:
		return events.KindOrderPlaced, e.ProductID
	case NotifyLowStock:
		return events.KindLowStock, e.ProductID
	default:
		return events.Kind(fmt.Sprintf("%T", eff)), 0
	}
}
