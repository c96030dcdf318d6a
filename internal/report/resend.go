// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/resendlabs/resend-go"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	send func(*resend.SendEmailRequest) error
}

var _ Sender = (*ResendSender)(nil)

// NewResendSender creates a sender for apiKey.
func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendSender{
		send: func(req *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(req)
			return err
		},
	}, nil
}

// Send delivers msg. The Resend client does not take a context, so ctx is
// only checked before the call.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.send(&resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to send report via Resend: %w", err)
	}
	return nil
}
