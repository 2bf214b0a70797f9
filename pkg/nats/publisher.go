package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish sends the event and waits for the stream acknowledgement.
// Identifiable events get a Nats-Msg-Id so redeliveries within the duplicate window are dropped.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	if t, ok := event.(messaging.Traceable); ok {
		for k, v := range t.Headers() {
			msg.Header.Set(k, v)
		}
	}
	var opts []jetstream.PublishOpt
	if id, ok := event.(messaging.Identifiable); ok && id.MessageID() != "" {
		opts = append(opts, jetstream.WithMsgID(id.MessageID()))
	}
	if _, err = p.js.PublishMsg(ctx, msg, opts...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
