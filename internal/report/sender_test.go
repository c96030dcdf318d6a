// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package report

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/resendlabs/resend-go"
)

type recordingSender struct {
	msgs []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestNewMailer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"valid", "ops@example.com", "team@example.com", false},
		{"named sender", "Personalize <ops@example.com>", "team@example.com", false},
		{"bad recipient", "ops@example.com", "not-an-address", true},
		{"empty sender", "", "team@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMailer(&recordingSender{}, tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMailer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidRecipient) {
				t.Errorf("expected ErrInvalidRecipient, got %v", err)
			}
		})
	}

	if _, err := NewMailer(nil, "a@example.com", "b@example.com"); err == nil {
		t.Error("expected error for nil sender")
	}
}

func TestMailer_Deliver(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewMailer(sender, "ops@example.com", "team@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := sampleReport()
	if err := m.Deliver(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.msgs))
	}
	got := sender.msgs[0]
	if got.Subject != r.Subject() || got.Body != r.Render() || got.To != "team@example.com" {
		t.Errorf("unexpected message %+v", got)
	}

	sender.err = errors.New("relay down")
	if err := m.Deliver(context.Background(), r); !errors.Is(err, sender.err) {
		t.Errorf("expected wrapped sender error, got %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	raw := buildMessage(Message{
		From:    "ops@example.com",
		To:      "team@example.com",
		Subject: "Personalize - summary 2024-06-01 03:00",
		Body:    "line one\nline two\n",
	})

	if !strings.HasPrefix(raw, "From: ops@example.com\r\nTo: team@example.com\r\n") {
		t.Errorf("unexpected headers: %q", raw)
	}
	if !strings.Contains(raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\nline one\r\nline two\r\n") {
		t.Errorf("expected CRLF body: %q", raw)
	}
}

// fakeSMTP accepts one session and records the DATA payload.
type fakeSMTP struct {
	listener net.Listener
	mu       sync.Mutex
	from     string
	rcpt     string
	data     string
	done     chan struct{}
}

func newFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeSMTP{listener: ln, done: make(chan struct{})}
	t.Cleanup(func() { _ = ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	write("220 localhost ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		upper := strings.ToUpper(cmd)
		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			write("250 localhost")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			f.mu.Lock()
			f.from = cmd[len("MAIL FROM:"):]
			f.mu.Unlock()
			write("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			f.mu.Lock()
			f.rcpt = cmd[len("RCPT TO:"):]
			f.mu.Unlock()
			write("250 OK")
		case upper == "DATA":
			write("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			f.mu.Lock()
			f.data = b.String()
			f.mu.Unlock()
			write("250 OK queued")
		case upper == "QUIT":
			write("221 Bye")
			return
		default:
			write("502 Command not implemented")
		}
	}
}

func TestSMTPSender_Send(t *testing.T) {
	f := newFakeSMTP(t)
	addr := f.listener.Addr().(*net.TCPAddr)

	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: addr.Port, Timeout: 5 * time.Second})
	err := s.Send(context.Background(), Message{
		From:    "ops@example.com",
		To:      "team@example.com",
		Subject: "hello",
		Body:    "report body\n",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("SMTP session did not finish")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.from != "<ops@example.com>" {
		t.Errorf("MAIL FROM = %q, want <ops@example.com>", f.from)
	}
	if f.rcpt != "<team@example.com>" {
		t.Errorf("RCPT TO = %q, want <team@example.com>", f.rcpt)
	}
	if !strings.Contains(f.data, "Subject: hello\r\n") || !strings.Contains(f.data, "report body\r\n") {
		t.Errorf("unexpected DATA %q", f.data)
	}
}

func TestSMTPSender_ConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	if err := s.Send(context.Background(), Message{From: "a@example.com", To: "b@example.com"}); err == nil {
		t.Error("expected connection error")
	}
}

func TestResendSender_Send(t *testing.T) {
	var got *resend.SendEmailRequest
	s := &ResendSender{send: func(req *resend.SendEmailRequest) error {
		got = req
		return nil
	}}

	err := s.Send(context.Background(), Message{From: "ops@example.com", To: "team@example.com", Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Text != "b" || len(got.To) != 1 || got.To[0] != "team@example.com" {
		t.Errorf("unexpected request %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if _, err := NewResendSender(""); err == nil {
		t.Error("expected error for empty api key")
	}
}

type mockSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	mock := &mockSES{}
	s := NewSESSender(mock)

	err := s.Send(context.Background(), Message{From: "ops@example.com", To: "team@example.com", Subject: "subj", Body: "body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := mock.input
	if aws.ToString(in.FromEmailAddress) != "ops@example.com" {
		t.Errorf("from = %q", aws.ToString(in.FromEmailAddress))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "team@example.com" {
		t.Errorf("to = %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Content.Simple.Subject.Data) != "subj" || aws.ToString(in.Content.Simple.Body.Text.Data) != "body" {
		t.Errorf("unexpected content %+v", in.Content.Simple)
	}

	mock.err = errors.New("throttled")
	if err := s.Send(context.Background(), Message{}); !errors.Is(err, mock.err) {
		t.Errorf("expected wrapped SES error, got %v", err)
	}
}
