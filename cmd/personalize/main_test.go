// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/personalize/internal/config"
	"github.com/tomtom215/personalize/internal/snapshot"
)

const ordersSchema = `
CREATE TABLE orders (
	id BIGINT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	status VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL,
	status_changed_at TIMESTAMP
);
CREATE TABLE order_lines (
	order_id BIGINT NOT NULL,
	product_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL
);
INSERT INTO orders VALUES
	(1, 100, 'V', TIMESTAMP '2024-01-10 09:00:00', NULL),
	(2, 101, 'V', TIMESTAMP '2024-02-10 09:00:00', NULL);
INSERT INTO order_lines VALUES
	(1, 10, 1), (1, 20, 1),
	(2, 10, 1), (2, 30, 1);
`

// seedDuckDB writes a small order history to a DuckDB file.
func seedDuckDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ordersSchema); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// localEnv points every collaborator at local files and disables the rest.
func localEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("STORE_BACKEND", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(dir, "store"))
	t.Setenv("SNAPSHOT_PATH", filepath.Join(dir, "snapshot.txt"))
	t.Setenv("REPORT_PROVIDER", "none")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "personalize dev") {
		t.Errorf("output = %q, want it to start with 'personalize dev'", out.String())
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"run", "serve", "version"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not found: %v", name, err)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestRunOnce_LocalPipeline(t *testing.T) {
	dir := localEnv(t)
	dbPath := filepath.Join(dir, "orders.duckdb")
	seedDuckDB(t, dbPath)
	t.Setenv("SOURCE_DSN", dbPath)

	if err := runOnce(context.Background(), ""); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}

	snap, err := snapshot.Load(filepath.Join(dir, "snapshot.txt"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for id, want := range map[int]string{20: "20:10", 30: "30:10"} {
		if got := snap[id]; got != want {
			t.Errorf("snapshot[%d] = %q, want %q", id, got, want)
		}
	}
	if !strings.HasPrefix(snap[10], "10:") {
		t.Errorf("snapshot[10] = %q, want a line for product 10", snap[10])
	}
}

func TestRunOnce_SourceFailureIsReturned(t *testing.T) {
	localEnv(t)
	// An in-memory DuckDB has no orders table.
	t.Setenv("SOURCE_DSN", "")

	if err := runOnce(context.Background(), ""); err == nil {
		t.Fatal("runOnce() error = nil, want the query failure")
	}
}

func TestRunOnce_InvalidConfig(t *testing.T) {
	localEnv(t)
	t.Setenv("RECOMMEND_TOP_N", "0")

	if err := runOnce(context.Background(), ""); err == nil {
		t.Fatal("runOnce() error = nil, want a validation error")
	}
}

func TestBuildMailer(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantNil bool
		wantErr bool
	}{
		{"none", func(c *config.Config) { c.Report.Provider = "none" }, true, false},
		{"smtp", func(c *config.Config) {
			c.Report.Provider = "smtp"
			c.Report.SMTP.Host = "smtp.example.com"
			c.Report.Recipient = "ops@example.com"
			c.Report.From = "bot@example.com"
		}, false, false},
		{"smtp with bad recipient", func(c *config.Config) {
			c.Report.Provider = "smtp"
			c.Report.SMTP.Host = "smtp.example.com"
			c.Report.Recipient = "not an address"
			c.Report.From = "bot@example.com"
		}, true, true},
		{"unknown", func(c *config.Config) { c.Report.Provider = "pigeon" }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			tt.modify(cfg)

			mailer, err := buildMailer(context.Background(), cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildMailer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (mailer == nil) != tt.wantNil {
				t.Errorf("buildMailer() = %v, wantNil %v", mailer, tt.wantNil)
			}
		})
	}
}

func TestBuildStore_Badger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Backend = "badger"
	cfg.Store.Badger.Path = filepath.Join(t.TempDir(), "store")

	s, err := buildStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildStore() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := os.Stat(cfg.Store.Badger.Path); err != nil {
		t.Errorf("badger directory not created: %v", err)
	}
}

func TestBuildApp_SourceOpenFailureReleasesStore(t *testing.T) {
	dir := localEnv(t)
	t.Setenv("SOURCE_DSN", filepath.Join(dir, "missing", "dir", "orders.duckdb"))

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	a, err := buildApp(context.Background(), cfg)
	if err == nil {
		a.Close()
		t.Fatal("buildApp() error = nil, want the duckdb open failure")
	}
	if a != nil {
		t.Errorf("buildApp() app = %v, want nil on error", a)
	}

	// Badger holds a directory lock while open.
	s, err := buildStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store still locked after failed buildApp: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
