// Package messaging defines the transport-neutral contract between event producers and the broker.
package messaging

import (
	"context"
)

const (
	// NotificationsStream is the JetStream stream that stores notification requests.
	NotificationsStream = "NOTIFICATIONS"
	// NotificationsSubjects is the subject filter bound to NotificationsStream.
	NotificationsSubjects = "notifications.>"
	// EmailRequestedSubject carries events.EmailRequestedEvent.
	EmailRequestedSubject = "notifications.email.requested"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Identifiable events carry a unique id the broker uses to drop duplicates.
type Identifiable interface {
	MessageID() string
}

// Traceable events carry trace context across the broker.
type Traceable interface {
	Headers() map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
