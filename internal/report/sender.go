// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package report

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/tomtom215/personalize/internal/logging"
)

// ErrInvalidRecipient is returned for an unparseable address.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends reports from a fixed sender to a fixed recipient.
type Mailer struct {
	sender Sender
	from   string
	to     string
}

// NewMailer validates both addresses.
func NewMailer(sender Sender, from, to string) (*Mailer, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	for _, addr := range []string{from, to} {
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidRecipient, logging.SanitizeEmail(addr), err)
		}
	}
	return &Mailer{sender: sender, from: from, to: to}, nil
}

// Deliver sends the rendered report.
func (m *Mailer) Deliver(ctx context.Context, r *Report) error {
	start := time.Now()
	err := m.sender.Send(ctx, Message{
		From:    m.from,
		To:      m.to,
		Subject: r.Subject(),
		Body:    r.Render(),
	})
	if err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}

	logging.Ctx(ctx).Info().Str("recipient", logging.SanitizeEmail(m.to)).
		Dur("duration", time.Since(start)).Msg("Run report delivered")
	return nil
}
