package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/host/static"
	"github.com/slashdevops/fingerprint/internal/config"
	"github.com/slashdevops/fingerprint/transport"
)

// runCLI runs the command line with logging disabled and returns the exit
// code and both output streams.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--log-level", "disabled"}, args...), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestVersionString(t *testing.T) {
	assert.True(t, strings.HasPrefix(versionString(false), "fingerprint version: "))

	long := versionString(true)
	assert.Contains(t, long, "Build date: ")
	assert.Contains(t, long, "Go version: ")
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version", "--long")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Git commit: ")
}

func TestRunCollectStaticJSON(t *testing.T) {
	code, out, _ := runCLI(t, "collect", "--host", "static", "--json", "--diagnostics", "--skip", "audio")
	require.Equal(t, 0, code, out)

	var result struct {
		ID          string                     `json:"id"`
		SessionID   string                     `json:"sessionId"`
		Record      map[string]json.RawMessage `json:"record"`
		Diagnostics map[string]any             `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Len(t, result.ID, 8)
	assert.NotEmpty(t, result.SessionID)
	assert.Contains(t, result.Record, "canvas")
	assert.JSONEq(t, `"`+result.ID+`"`, string(result.Record[fingerprint.IdentifierKey]))
	assert.JSONEq(t, `"unavailable"`, string(result.Record["audio"]))
	assert.Equal(t, []any{"audio"}, result.Diagnostics["skipped"])
}

func TestRunCollectPlainWithDiagnostics(t *testing.T) {
	code, out, errOut := runCLI(t, "collect", "--host", "static", "--diagnostics", "--skip", "fonts,audio")
	require.Equal(t, 0, code)

	assert.Len(t, strings.TrimSpace(out), 8)
	assert.Contains(t, errOut, "Diagnostics:")
	assert.Contains(t, errOut, "Skipped: fonts, audio")
}

func TestRunErrorsPrintJSON(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad host", []string{"collect", "--host", "emulator"}, "invalid host kind"},
		{"unknown probe", []string{"collect", "--host", "static", "--probes", "teleport"}, "unknown probe"},
		{"missing profile", []string{"collect", "--host", "static", "--profile", "/nonexistent/device.yaml"}, "reading profile"},
		{"validate needs id", []string{"validate"}, "accepts 1 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)

			var result map[string]string
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			assert.Contains(t, result["error"], tt.want)
		})
	}
}

func TestRunValidate(t *testing.T) {
	code, out, _ := runCLI(t, "collect", "--host", "static")
	require.Equal(t, 0, code)
	id := strings.TrimSpace(out)

	code, out, _ = runCLI(t, "validate", id, "--host", "static")
	assert.Equal(t, 0, code)
	assert.Equal(t, "valid: fingerprint matches\n", out)

	code, out, _ = runCLI(t, "validate", "00000000", "--host", "static", "--json")
	assert.Equal(t, 1, code)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, false, result["valid"])
	assert.Equal(t, "00000000", result["expectedID"])
}

func TestRunCollectSaltChangesID(t *testing.T) {
	_, plain, _ := runCLI(t, "collect", "--host", "static")
	_, salted, _ := runCLI(t, "collect", "--host", "static", "--salt", "tenant-a")

	assert.NotEqual(t, plain, salted)
}

func TestRunCollectSubmitsOverHTTP(t *testing.T) {
	received := make(chan transport.Ack, 1)
	srv := httptest.NewServer(transport.NewHandler().WithObserver(func(ack transport.Ack, _ []byte) {
		received <- ack
	}))
	defer srv.Close()

	code, out, _ := runCLI(t, "collect", "--host", "static", "--json", "--submit", srv.URL)
	require.Equal(t, 0, code, out)

	var result struct {
		ID  string        `json:"id"`
		Ack transport.Ack `json:"ack"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, transport.StatusSuccess, result.Ack.Status)
	assert.Equal(t, result.ID, result.Ack.FingerprintID)

	select {
	case ack := <-received:
		assert.Equal(t, result.ID, ack.FingerprintID)
	case <-time.After(time.Second):
		t.Fatal("endpoint did not observe the submission")
	}
}

func TestSubmitRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := transport.NewMockSink(ctrl)

	rec, err := fingerprint.New(static.MustNew(static.Desktop())).Collect(context.Background())
	require.NoError(t, err)

	sink.EXPECT().
		Submit(gomock.Any(), rec).
		Return(&transport.Ack{Status: transport.StatusSuccess, FingerprintID: rec.Identifier()}, nil)

	ack, err := submitRecord(context.Background(), sink, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Identifier(), ack.FingerprintID)

	sink.EXPECT().
		Submit(gomock.Any(), rec).
		Return(nil, &transport.StatusError{Code: 503})

	_, err = submitRecord(context.Background(), sink, rec)
	var statusErr *transport.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "submitting record: HTTP error: 503", err.Error())
}

func TestSinkFor(t *testing.T) {
	tests := []struct {
		target string
		want   config.SinkConfig
	}{
		{"", config.SinkConfig{Kind: config.SinkNone}},
		{"http://127.0.0.1:8080", config.SinkConfig{Kind: config.SinkHTTP, URL: "http://127.0.0.1:8080"}},
		{"nats://127.0.0.1:4222", config.SinkConfig{Kind: config.SinkNATS, URL: "nats://127.0.0.1:4222", Subject: "fp.in"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sinkFor(tt.target, "fp.in"), tt.target)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	assert.Nil(t, formatDiagnostics(nil))

	result := formatDiagnostics(&fingerprint.DiagnosticInfo{
		SessionID: "s-1",
		Collected: []string{"identity"},
		TimedOut:  []string{"audio"},
		Errors:    map[string]error{"audio": fingerprint.ErrProbeTimeout},
	})

	assert.Equal(t, "s-1", result["sessionId"])
	assert.Equal(t, []string{"audio"}, result["timedOut"])
	assert.Equal(t, map[string]string{"audio": "timeout"}, result["errors"])
	assert.NotContains(t, result, "skipped")
}

func TestPrintDiagnosticsNil(t *testing.T) {
	var errOut bytes.Buffer
	a := &app{errOut: &errOut}

	a.printDiagnostics(nil)
	assert.Equal(t, "no diagnostic information available\n", errOut.String())
}
