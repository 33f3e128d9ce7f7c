package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/host/static"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func collectRecord(t *testing.T) *fingerprint.Record {
	t.Helper()

	rec, err := fingerprint.New(static.MustNew(static.Desktop())).Collect(context.Background())
	require.NoError(t, err)

	return rec
}

func newTestServer(t *testing.T) (*httptest.Server, chan []byte) {
	t.Helper()

	received := make(chan []byte, 8)
	h := NewHandler().
		WithClock(func() time.Time { return fixedNow }).
		WithObserver(func(_ Ack, body []byte) { received <- body })
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return srv, received
}

func TestHTTPSinkSubmit(t *testing.T) {
	srv, received := newTestServer(t)
	rec := collectRecord(t)

	ack, err := NewHTTPSink(srv.URL+"/").Submit(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, ack.Status)
	assert.Equal(t, rec.Identifier(), ack.FingerprintID)
	assert.Equal(t, "2025-06-01T12:00:00Z", ack.Timestamp)

	require.Len(t, received, 1)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(<-received, &body))
	assert.Contains(t, body, "canvas")
	assert.Contains(t, body, fingerprint.IdentifierKey)
}

func TestHTTPSinkSendsUserAgent(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		writeJSON(w, http.StatusOK, Ack{Status: StatusSuccess})
	}))
	defer srv.Close()

	_, err := NewHTTPSink(srv.URL).Submit(context.Background(), collectRecord(t))
	require.NoError(t, err)

	h := <-headers
	assert.True(t, strings.HasPrefix(h.Get("User-Agent"), "fingerprint/"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestHTTPSinkStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "storage offline", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPSink(srv.URL).Submit(context.Background(), collectRecord(t))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "HTTP error: 500: storage offline", err.Error())
}

func TestHTTPSinkRejectedAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ack{Status: StatusFailed, Message: "quota exceeded"})
	}))
	defer srv.Close()

	ack, err := NewHTTPSink(srv.URL).Submit(context.Background(), collectRecord(t))
	assert.ErrorIs(t, err, ErrRejected)
	require.NotNil(t, ack)
	assert.Equal(t, "quota exceeded", ack.Message)
}

func TestHTTPSinkRefusesUnfinishedRecord(t *testing.T) {
	_, err := NewHTTPSink("http://127.0.0.1:1").Submit(context.Background(), nil)
	assert.ErrorContains(t, err, "not finalized")
}

func TestHandlerMissingID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+SubmitPath, "application/json", strings.NewReader(`{"userAgent": "x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var ack Ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, MissingID, ack.FingerprintID)
}

func TestHandlerErrors(t *testing.T) {
	srv, received := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"malformed json", http.MethodPost, SubmitPath, `{"fingerprintId":`, http.StatusBadRequest},
		{"not an object", http.MethodPost, SubmitPath, `[1, 2]`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, SubmitPath, "", http.StatusMethodNotAllowed},
		{"health wrong method", http.MethodPost, "/healthz", "", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/BrowserFingerprint.js", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}

	assert.Empty(t, received)
}

func TestHandlerHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"status": "ok", "timestamp": "2025-06-01T12:00:00Z"}, body)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(l.Addr().String(), NewHandler(), nil).Run(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestAccept(t *testing.T) {
	ack, err := accept([]byte(`{"fingerprintId": "0badf00d"}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "0badf00d", ack.FingerprintID)

	ack, err = accept([]byte(`{"fingerprintId": 42}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, MissingID, ack.FingerprintID)

	ack, err = accept([]byte(`nope`), fixedNow)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, ack.Status)
	assert.NotEmpty(t, ack.Error)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}
