package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// NatsNotifier turns a message into an EmailRequestedEvent and publishes it.
// The notification service performs the actual delivery.
type NatsNotifier struct {
	publisher messaging.Publisher
	now       func() time.Time
}

func NewNatsNotifier(publisher messaging.Publisher) *NatsNotifier {
	return &NatsNotifier{
		publisher: publisher,
		now:       time.Now,
	}
}

func (n *NatsNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	info, _ := MessageInfoFrom(ctx)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	event := events.EmailRequestedEvent{
		ID:        uuid.New(),
		Kind:      info.Kind,
		Recipient: recipient,
		Title:     subject,
		Body:      body,
		ProductID: info.ProductID,
		CreatedAt: n.now().UTC(),
		Carrier:   carrier,
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
