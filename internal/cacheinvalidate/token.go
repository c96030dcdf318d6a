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
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned when the auth endpoint answers without a token.
var ErrEmptyToken = errors.New("auth response contains no token")

// Token is a bearer token for the invalidation API.
type Token struct {
	Value string
	Type  string

	// ExpiresAt is zero when neither the response nor the token says.
	ExpiresAt time.Time
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse field matching is case-insensitive, so "Token" and "token"
// are both accepted.
type authResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

// fetchToken authenticates against the first server.
func (c *Client) fetchToken(ctx context.Context) (*Token, error) {
	endpoint, err := joinURL(c.config.Servers[0], c.config.AuthPath)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(credentials{Username: c.config.Username, Password: c.config.Password})
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("auth returned status %d: %s", resp.StatusCode, string(body))
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if auth.Token == "" {
		return nil, ErrEmptyToken
	}

	token := &Token{Value: auth.Token, Type: auth.TokenType}
	switch {
	case auth.ExpiresIn > 0:
		token.ExpiresAt = c.now().Add(time.Duration(auth.ExpiresIn) * time.Second)
	default:
		token.ExpiresAt = jwtExpiry(auth.Token)
	}
	return token, nil
}

// jwtExpiry reads the exp claim of a JWT without verifying it. The API owns
// the signing key; the token is opaque to this client except for logging.
func jwtExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
