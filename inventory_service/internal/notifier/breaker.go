package notifier

import (
	"context"
	"log/slog"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/resilience"
	"github.com/sony/gobreaker/v2"
)

// BreakerNotifier stops calling the wrapped Sender while it keeps failing,
// so a broker outage does not add a send timeout to every order.
type BreakerNotifier struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerNotifier(next Sender, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerNotifier {
	settings := resilience.NewSettings("notifier", cfg, nil)
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
	}
	return &BreakerNotifier{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Send returns gobreaker.ErrOpenState without calling the wrapped Sender while the breaker is open.
func (b *BreakerNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, recipient, subject, body)
	})
	return err
}
