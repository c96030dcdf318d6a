// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
)

func startNATS(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("failed to create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestPublisher_PublishChanges(t *testing.T) {
	ns := startNATS(t)

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync(DefaultSubject)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}

	pub, err := NewPublisher(Config{URL: ns.ClientURL()})
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}
	defer pub.Close()

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return at }

	err = pub.PublishChanges(context.Background(), "abcd1234", ChangeSet{
		Changed: []int{3, 7},
		Upserts: 1,
		Deletes: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("no message received: %v", err)
	}

	var got ChangeEvent
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if got.RunID != "abcd1234" || got.Upserts != 1 || got.Deletes != 1 || !got.At.Equal(at) {
		t.Errorf("unexpected event %+v", got)
	}
	if len(got.Changed) != 2 || got.Changed[0] != 3 || got.Changed[1] != 7 {
		t.Errorf("changed = %v, want [3 7]", got.Changed)
	}
	if msg.Header.Get("run_id") != "abcd1234" {
		t.Errorf("run_id header = %q, want abcd1234", msg.Header.Get("run_id"))
	}
	if msg.Header.Get("_watermill_message_uuid") == "" {
		t.Error("expected message uuid header")
	}
}

func TestPublisher_EmptyChangesEncodeAsArray(t *testing.T) {
	ns := startNATS(t)

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync("custom.subject")
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	_ = nc.Flush()

	pub, err := NewPublisher(Config{URL: ns.ClientURL(), Subject: "custom.subject"})
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.PublishChanges(context.Background(), "run", ChangeSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("no message received: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg.Data, &raw); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if string(raw["changed"]) != "[]" {
		t.Errorf("changed = %s, want []", raw["changed"])
	}
}

func TestPublisher_Closed(t *testing.T) {
	ns := startNATS(t)

	pub, err := NewPublisher(Config{URL: ns.ClientURL()})
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}

	err = pub.PublishChanges(context.Background(), "run", ChangeSet{})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestNewPublisher_RequiresURL(t *testing.T) {
	if _, err := NewPublisher(Config{}); err == nil {
		t.Error("expected error for missing url")
	}
}
