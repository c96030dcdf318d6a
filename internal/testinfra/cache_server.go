// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// InvalidationItem mirrors one entry of an invalidation request body.
type InvalidationItem struct {
	Region         string `json:"region"`
	Key            string `json:"key"`
	CleanRegionInd bool   `json:"cleanRegionInd"`
}

// InvalidationCapture is one received invalidation batch.
type InvalidationCapture struct {
	Authorization string
	Items         []InvalidationItem
}

// MockCacheServer serves /auth/token and /cache/invalidate.
type MockCacheServer struct {
	Server *httptest.Server

	// Token returned by the auth endpoint.
	Token string

	// InvalidateStatus is returned by the invalidation endpoint (default 200).
	InvalidateStatus int

	mu       sync.Mutex
	captures []InvalidationCapture
	tokens   int
}

// Paths served by MockCacheServer.
const (
	MockAuthPath       = "/auth/token"
	MockInvalidatePath = "/cache/invalidate"
)

// NewMockCacheServer starts a server closed at test cleanup.
func NewMockCacheServer(t *testing.T) *MockCacheServer {
	t.Helper()

	m := &MockCacheServer{
		Token:            "mock-token",
		InvalidateStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(MockAuthPath, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.tokens++
		token := m.Token
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":     token,
			"tokenType": "Bearer",
			"expiresIn": 3600,
		})
	})
	mux.HandleFunc(MockInvalidatePath, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var items []InvalidationItem
		if err := json.Unmarshal(body, &items); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.captures = append(m.captures, InvalidationCapture{
			Authorization: strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
			Items:         items,
		})
		status := m.InvalidateStatus
		m.mu.Unlock()

		w.WriteHeader(status)
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server base URL.
func (m *MockCacheServer) URL() string {
	return m.Server.URL
}

// SetInvalidateStatus changes the invalidation response status.
func (m *MockCacheServer) SetInvalidateStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateStatus = status
}

// Captures returns a copy of all received invalidation batches.
func (m *MockCacheServer) Captures() []InvalidationCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]InvalidationCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// TokenRequests returns how many tokens were issued.
func (m *MockCacheServer) TokenRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens
}
