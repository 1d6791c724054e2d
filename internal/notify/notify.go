// Package notify implements the mock mail and SMS senders. A send logs the
// message and appends it to the persisted send-history; nothing leaves the
// process.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// Sender records outbound mail and SMS.
type Sender struct {
	kvs *kv.Store
	clk clock.Clock
}

// NewSender creates a sender over the shared store.
func NewSender(kvs *kv.Store, clk clock.Clock) *Sender {
	return &Sender{kvs: kvs, clk: clk}
}

// SendMail logs and records an email.
func (s *Sender) SendMail(ctx context.Context, recipient, subject, body string, links []string) error {
	if recipient == "" {
		return fmt.Errorf("%w: recipient required", model.ErrValidation)
	}

	slog.Info("mail sent", "to", recipient, "subject", subject, "links", len(links))
	_, err := store.AppendNotification(ctx, s.kvs, s.clk, model.Notification{
		Channel:   model.ChannelMail,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Links:     links,
	})
	return err
}

// SendSMS logs and records a text message.
func (s *Sender) SendSMS(ctx context.Context, recipient, text string) error {
	if recipient == "" {
		return fmt.Errorf("%w: recipient required", model.ErrValidation)
	}

	slog.Info("sms sent", "to", recipient)
	_, err := store.AppendNotification(ctx, s.kvs, s.clk, model.Notification{
		Channel:   model.ChannelSMS,
		Recipient: recipient,
		Body:      text,
	})
	return err
}
