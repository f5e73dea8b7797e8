package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
)

type stubReadiness struct {
	err error
}

func (s *stubReadiness) CheckReadiness(context.Context) error { return s.err }

type stubIndex struct {
	emitted  []report.Emitted
	payloads map[int][]byte
}

func (s *stubIndex) Emitted() []report.Emitted { return s.emitted }

func (s *stubIndex) Payload(id int) ([]byte, bool) {
	p, ok := s.payloads[id]
	return p, ok
}

func newTestServer(ready *stubReadiness, docs *stubIndex) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", ready, docs, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(&stubReadiness{}, &stubIndex{})

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestServerReady(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := newTestServer(&stubReadiness{}, &stubIndex{})

		rec := get(t, s, "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		s := newTestServer(&stubReadiness{err: errors.New("no window document emitted yet")}, &stubIndex{})

		rec := get(t, s, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "not ready")
	})
}

func TestServerMetrics(t *testing.T) {
	s := newTestServer(&stubReadiness{}, &stubIndex{})

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerWindows(t *testing.T) {
	docs := &stubIndex{
		emitted: []report.Emitted{
			{WindowID: 1, File: "window_001.json"},
			{WindowID: 2, File: "window_002.json"},
		},
		payloads: map[int][]byte{
			1: []byte(`{"current_window":{"window_id":1}}`),
			2: []byte(`{"current_window":{"window_id":2}}`),
		},
	}
	s := newTestServer(&stubReadiness{}, docs)

	t.Run("lists emitted documents", func(t *testing.T) {
		rec := get(t, s, "/windows")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count   int              `json:"count"`
			Windows []report.Emitted `json:"windows"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Windows, 2)
		assert.Equal(t, "window_001.json", body.Windows[0].File)
	})

	t.Run("serves a document verbatim", func(t *testing.T) {
		rec := get(t, s, "/windows/2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, `{"current_window":{"window_id":2}}`, rec.Body.String())
	})

	t.Run("unknown window", func(t *testing.T) {
		rec := get(t, s, "/windows/9")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer window id", func(t *testing.T) {
		rec := get(t, s, "/windows/latest")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty index", func(t *testing.T) {
		s := newTestServer(&stubReadiness{}, &stubIndex{})

		rec := get(t, s, "/windows")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":0`)
	})
}
