// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package cacheinvalidate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/metrics"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
)

// ErrNoServers is returned by New when no server is configured.
var ErrNoServers = errors.New("no cache servers configured")

// Config configures the invalidation client.
type Config struct {
	// Servers are base URLs; the first one also issues tokens.
	Servers []string

	AuthPath       string
	InvalidatePath string
	Username       string
	Password       string

	// Timeout applies to each HTTP request. Default: 30s
	Timeout time.Duration

	Breaker BreakerConfig
}

// Invalidator sends invalidation batches.
type Invalidator interface {
	Invalidate(ctx context.Context, items []Item) *Result
}

// ServerResult is the outcome of one server's request.
type ServerResult struct {
	Server     string        `json:"server"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// Result summarizes one batch.
type Result struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// TokenErr is set when authentication failed and nothing was sent.
	TokenErr error          `json:"-"`
	Servers  []ServerResult `json:"servers,omitempty"`
}

// OK reports whether every server accepted the batch.
func (r *Result) OK() bool {
	return r.Failed == 0
}

// Client talks to the invalidation API.
type Client struct {
	config     Config
	httpClient *http.Client
	breakers   map[string]*serverBreaker
	logger     zerolog.Logger
	now        func() time.Time
}

var _ Invalidator = (*Client)(nil)

// New creates a client. Server URLs are normalized without trailing slash.
func New(cfg Config) (*Client, error) {
	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		s = strings.TrimSuffix(strings.TrimSpace(s), "/")
		if s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	cfg.Servers = servers
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     logging.WithComponent("cacheinvalidate"),
		now:        time.Now,
	}
	if cfg.Breaker.Enabled {
		c.breakers = make(map[string]*serverBreaker, len(servers))
		for _, s := range servers {
			c.breakers[s] = newServerBreaker(s, cfg.Breaker)
		}
	}
	return c, nil
}

// Invalidate sends items to every server. It never returns an error; the
// outcome is in the Result.
func (c *Client) Invalidate(ctx context.Context, items []Item) *Result {
	result := &Result{Requested: len(items)}
	if len(items) == 0 {
		return result
	}
	log := logging.CtxWith(ctx).Str("component", "cacheinvalidate").Logger()

	token, err := c.fetchToken(ctx)
	if err != nil {
		log.Error().Err(err).Str("server", c.config.Servers[0]).Msg("Cache API authentication failed")
		result.TokenErr = err
		result.Failed = len(items)
		metrics.RecordInvalidatedKeys(0, result.Failed)
		return result
	}
	log.Debug().Str("token", logging.SanitizeToken(token.Value)).Time("expires_at", token.ExpiresAt).Msg("Cache API token acquired")

	body, err := json.Marshal(items)
	if err != nil {
		result.TokenErr = fmt.Errorf("marshal invalidation batch: %w", err)
		result.Failed = len(items)
		metrics.RecordInvalidatedKeys(0, result.Failed)
		return result
	}

	// Each goroutine writes only its own slot; failures never cancel siblings.
	result.Servers = make([]ServerResult, len(c.config.Servers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(c.config.Servers))
	for i, server := range c.config.Servers {
		g.Go(func() error {
			result.Servers[i] = c.send(gctx, server, token, body)
			return nil
		})
	}
	_ = g.Wait()

	allOK := true
	for _, sr := range result.Servers {
		if sr.Err != nil {
			allOK = false
			log.Warn().Err(sr.Err).Str("server", sr.Server).Int("status", sr.StatusCode).
				Int("items", len(items)).Msg("Cache invalidation failed")
			continue
		}
		log.Info().Str("server", sr.Server).Int("items", len(items)).Dur("duration", sr.Duration).Msg("Cache invalidated")
	}

	if allOK {
		result.Succeeded = len(items)
	} else {
		result.Failed = len(items)
	}
	metrics.RecordInvalidatedKeys(result.Succeeded, result.Failed)
	return result
}

// send posts body to one server, through its breaker when enabled.
func (c *Client) send(ctx context.Context, server string, token *Token, body []byte) ServerResult {
	start := time.Now()
	sr := ServerResult{Server: server}

	do := func() error {
		status, err := c.post(ctx, server, token, body)
		sr.StatusCode = status
		return err
	}

	if b, ok := c.breakers[server]; ok {
		sr.Err = b.execute(do)
	} else {
		sr.Err = do()
	}

	sr.Duration = time.Since(start)
	metrics.RecordCacheInvalidation(server, sr.Duration, sr.Err)
	return sr
}

func (c *Client) post(ctx context.Context, server string, token *Token, body []byte) (int, error) {
	endpoint, err := joinURL(server, c.config.InvalidatePath)
	if err != nil {
		return 0, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create invalidation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("invalidation request to %s failed: %w", server, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if readErr != nil {
			return resp.StatusCode, fmt.Errorf("invalidation returned status %d (failed to read body)", resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("invalidation returned status %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, nil
}

// joinURL resolves path against base the way a browser resolves a relative
// link: "/api/x" replaces the base path, "api/x" is appended to its directory.
func joinURL(base, path string) (string, error) {
	b, err := url.Parse(base + "/")
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", base, err)
	}
	p, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return b.ResolveReference(p).String(), nil
}
