package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/abgdnv/inventory/notification_service/internal/config"
	"github.com/abgdnv/inventory/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	data string
}

func newTestMailer(err error) (*SMTPMailer, *[]sentMail) {
	var sent []sentMail
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "inventory@example.com"})
	m.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, data: string(msg)})
		return err
	}
	return m, &sent
}

func TestSMTPMailer_Send(t *testing.T) {
	testCases := []struct {
		name      string
		sendErr   error
		expectErr bool
	}{
		{name: "delivered"},
		{name: "relay refuses", sendErr: errors.New("554 rejected"), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			m, sent := newTestMailer(tc.sendErr)
			msg := Message{To: "ops@example.com", Subject: "Low Stock Alert: Widget", HTML: "<p>2 left</p>"}

			// when
			err := m.Send(context.Background(), msg)

			// then
			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "ops@example.com")
			} else {
				require.NoError(t, err)
			}
			require.Len(t, *sent, 1)
			got := (*sent)[0]
			assert.Equal(t, "smtp.example.com:2525", got.addr)
			assert.Equal(t, "inventory@example.com", got.from)
			assert.Equal(t, []string{"ops@example.com"}, got.to)
			assert.Contains(t, got.data, "Subject: Low Stock Alert: Widget\r\n")
			assert.Contains(t, got.data, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
			assert.Contains(t, got.data, "Date: Fri, 01 Mar 2024 10:00:00 +0000\r\n")
			assert.Contains(t, got.data, "\r\n\r\n<p>2 left</p>")
		})
	}
}

func TestSMTPMailer_SendCancelled(t *testing.T) {
	// given
	m, sent := newTestMailer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	err := m.Send(ctx, Message{To: "ops@example.com", Subject: "x"})

	// then
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *sent)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.SMTPConfig{}, logger.Discard()))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp.example.com", Port: 25}, logger.Discard()))
	assert.NoError(t, NewLogMailer(logger.Discard()).Send(context.Background(), Message{To: "a@b.c"}))
}
