package subscriber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/notification_service/internal/mailer"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/abgdnv/inventory/notification_service/internal/subscriber"

// ackableMsg is the subset of jetstream.Msg the handler needs.
type ackableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Handler turns email requests into mails.
type Handler struct {
	mailer mailer.Mailer
	logger *slog.Logger
	tracer trace.Tracer

	delivered metric.Int64Counter
	failed    metric.Int64Counter
	rejected  metric.Int64Counter
}

func NewHandler(m mailer.Mailer, meter metric.Meter, logger *slog.Logger) *Handler {
	h := &Handler{
		mailer: m,
		logger: logger.With("component", "subscriber"),
		tracer: otel.Tracer(instrumentationName),
	}
	h.delivered, _ = meter.Int64Counter("notifications_delivered", metric.WithDescription("Mails handed to the mail channel"))
	h.failed, _ = meter.Int64Counter("notifications_delivery_failed", metric.WithDescription("Mail attempts that will be redelivered"))
	h.rejected, _ = meter.Int64Counter("notifications_rejected", metric.WithDescription("Malformed email requests dropped"))
	return h
}

// Start initializes the NATS JetStream consumer and starts multiple worker goroutines to process messages.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, handler *Handler) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    subscriberCfg.MaxDeliver,
		AckWait:       subscriberCfg.AckWait,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < subscriberCfg.Workers; i++ {
		g.Go(func() error {
			return handler.runWorker(gCtx, consumer, subscriberCfg)
		})
	}
	return g.Wait()
}

// runWorker fetches messages from the NATS JetStream consumer and processes them.
func (h *Handler) runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig) error {
	for {
		select {
		case <-ctx.Done():
			// ctx was cancelled or timed out (e.g., application shutdown)
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				// if the error is a timeout, we can just continue to the next iteration
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				h.logger.Error("failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				h.handleMessage(ctx, msg)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) && ctx.Err() == nil {
				h.logger.Warn("batch finished with error", "error", err)
			}
		}
	}
}

// handleMessage delivers one email request.
// Malformed requests are terminated, failed deliveries are nak'ed for redelivery.
func (h *Handler) handleMessage(ctx context.Context, msg ackableMsg) {
	if msg == nil {
		h.logger.Error("received nil message")
		return
	}
	event, err := events.DecodeEmailRequested(msg.Data())
	if err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed email request", "error", err)
		h.rejected.Add(ctx, 1)
		if err := msg.Term(); err != nil {
			h.logger.ErrorContext(ctx, "failed to terminate message", "error", err)
		}
		return
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(event.Carrier))
	ctx, span := h.tracer.Start(ctx, "notification.deliver",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("notification.kind", string(event.Kind)),
			attribute.Int64("notification.product_id", event.ProductID),
		))
	defer span.End()

	kindAttr := metric.WithAttributes(attribute.String("kind", string(event.Kind)))
	logger := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("kind", string(event.Kind)),
		slog.Int64("product_id", event.ProductID))

	err = h.mailer.Send(ctx, mailer.Message{To: event.Recipient, Subject: event.Title, HTML: event.Body})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		h.failed.Add(ctx, 1, kindAttr)
		logger.WarnContext(ctx, "mail delivery failed, requesting redelivery", "error", err)
		if err := msg.Nak(); err != nil {
			logger.ErrorContext(ctx, "failed to nack message", "error", err)
		}
		return
	}

	h.delivered.Add(ctx, 1, kindAttr)
	logger.InfoContext(ctx, "notification delivered",
		slog.String("created_at", event.CreatedAt.Format(time.RFC3339)))
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}
