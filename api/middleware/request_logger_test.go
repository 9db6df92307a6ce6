// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/delegard/delegard/log"
)

// mockLogger records the context of Info calls.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) New(_ ...any) log.Logger { return m }

func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Handler() slog.Handler { return nil }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		slow      time.Duration
		log5xx    bool
		shouldLog bool
	}{
		{
			name:      "enabled",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) },
			enabled:   true,
			shouldLog: true,
		},
		{
			name:    "disabled",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) },
		},
		{
			name: "slow request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(15 * time.Millisecond)
				w.Write([]byte("OK"))
			},
			slow:      5 * time.Millisecond,
			shouldLog: true,
		},
		{
			name:    "fast request under threshold",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) },
			slow:    time.Second,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			log5xx:    true,
			shouldLog: true,
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			log5xx: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.slow, tt.log5xx)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(`{"method":"round"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
			if tt.shouldLog {
				assert.Contains(t, logger.loggedData, "/calls")
				assert.Contains(t, logger.loggedData, `{"method":"round"}`)
			} else {
				assert.Empty(t, logger.loggedData)
			}
		})
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	var enabled atomic.Bool
	handler := RequestLoggerMiddleware(&mockLogger{}, &enabled, 0, false)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/node/round", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}
