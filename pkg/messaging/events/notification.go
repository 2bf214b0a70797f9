package events

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/google/uuid"
)

// Kind distinguishes the business reason of a notification.
type Kind string

const (
	KindOrderPlaced Kind = "order_placed"
	KindLowStock    Kind = "low_stock"
)

// EmailRequestedEvent asks the notification service to deliver one e-mail.
type EmailRequestedEvent struct {
	ID        uuid.UUID         `json:"id"`
	Kind      Kind              `json:"kind"`
	Recipient string            `json:"recipient"`
	// Title is the e-mail subject line. Subject() is the broker subject.
	Title     string            `json:"subject"`
	Body      string            `json:"body"`
	ProductID int64             `json:"product_id"`
	CreatedAt time.Time         `json:"created_at"`
	Carrier   map[string]string `json:"carrier,omitempty"`
}

var (
	ErrMissingRecipient = errors.New("recipient is required")
	ErrMissingSubject   = errors.New("subject is required")
)

// Subject implements messaging.Event.
func (e EmailRequestedEvent) Subject() string {
	return messaging.EmailRequestedSubject
}

// Payload implements messaging.Event.
func (e EmailRequestedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// MessageID implements messaging.Identifiable.
func (e EmailRequestedEvent) MessageID() string {
	return e.ID.String()
}

// Headers implements messaging.Traceable.
func (e EmailRequestedEvent) Headers() map[string]string {
	return e.Carrier
}

// Validate checks the fields a mailer needs.
func (e EmailRequestedEvent) Validate() error {
	if strings.TrimSpace(e.Recipient) == "" {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingSubject
	}
	return nil
}

// DecodeEmailRequested parses and validates a message payload.
func DecodeEmailRequested(data []byte) (EmailRequestedEvent, error) {
	var e EmailRequestedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, err
	}
	return e, e.Validate()
}
