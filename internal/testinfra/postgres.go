// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage is the PostgreSQL image used for purchase-source tests.
	DefaultPostgresImage = "postgres:16-alpine"

	// DefaultPostgresPort is the PostgreSQL listener port inside the container.
	DefaultPostgresPort = "5432"

	postgresUser     = "personalize"
	postgresPassword = "personalize"
	postgresDB       = "shop"
)

// PurchaseSchema creates the tables the purchase query reads.
const PurchaseSchema = `
CREATE TABLE orders (
	id BIGINT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	status_changed_at TIMESTAMP
);
CREATE TABLE order_lines (
	order_id BIGINT NOT NULL REFERENCES orders(id),
	product_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL
);
`

// PostgresContainer is a running PostgreSQL instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
}

// StartPostgres starts PostgreSQL with PurchaseSchema plus seedSQL applied and
// removes it when t ends. The test is skipped when no container provider is
// reachable.
func StartPostgres(t *testing.T, seedSQL string) *PostgresContainer {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := startPostgres(ctx, seedSQL)
	if pg != nil {
		testcontainers.CleanupContainer(t, pg.Container)
	}
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	return pg
}

func startPostgres(ctx context.Context, seedSQL string) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultPostgresImage,
		ExposedPorts: []string{DefaultPostgresPort + "/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The entrypoint restarts the server once after init scripts run.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultPostgresPort+"/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}
	pg := &PostgresContainer{Container: container}

	if err := execSQL(ctx, container, PurchaseSchema+seedSQL); err != nil {
		return pg, fmt.Errorf("seed postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return pg, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, DefaultPostgresPort)
	if err != nil {
		return pg, fmt.Errorf("get mapped port: %w", err)
	}

	pg.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
	return pg, nil
}

// execSQL runs statements through psql inside the container.
func execSQL(ctx context.Context, container testcontainers.Container, sql string) error {
	code, output, err := container.Exec(ctx, []string{
		"psql", "-v", "ON_ERROR_STOP=1", "-U", postgresUser, "-d", postgresDB, "-c", sql,
	})
	if err != nil {
		return fmt.Errorf("exec psql: %w", err)
	}
	if code != 0 {
		out, _ := io.ReadAll(output)
		return fmt.Errorf("psql failed with code %d: %s", code, string(out))
	}
	return nil
}
