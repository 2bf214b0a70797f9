package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NewClient connects to NATS using the given configuration.
func NewClient(cfg config.NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{nats.Timeout(cfg.Timeout)}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	nc, err := nats.Connect(cfg.Url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func NewJetStreamContext(nc *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nil
}

// StreamSpec describes a stream to provision.
type StreamSpec struct {
	Name       string
	Subjects   []string
	MaxAge     time.Duration
	Duplicates time.Duration
}

// EnsureStream creates the stream or updates it in place so producers and consumers can start in any order.
func EnsureStream(ctx context.Context, js jetstream.JetStream, spec StreamSpec) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       spec.Name,
		Subjects:   spec.Subjects,
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     spec.MaxAge,
		Duplicates: spec.Duplicates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure stream %s: %w", spec.Name, err)
	}
	return stream, nil
}
