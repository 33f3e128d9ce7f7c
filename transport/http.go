package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/internal/version"
)

const (
	// maxBodySize bounds both submitted records and replies.
	maxBodySize = 4 << 20

	defaultHTTPTimeout = 10 * time.Second
)

// StatusError reports a non-2xx reply from the collection endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %d", e.Code)
	}

	return fmt.Sprintf("HTTP error: %d: %s", e.Code, e.Body)
}

// HTTPSink posts records to a collection endpoint.
type HTTPSink struct {
	url    string
	client *http.Client
	logger *zerolog.Logger
}

var _ Sink = (*HTTPSink)(nil)

// NewHTTPSink creates a sink posting to baseURL + [SubmitPath].
func NewHTTPSink(baseURL string) *HTTPSink {
	return &HTTPSink{
		url:    strings.TrimRight(baseURL, "/") + SubmitPath,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// WithClient replaces the HTTP client.
func (s *HTTPSink) WithClient(client *http.Client) *HTTPSink {
	s.client = client

	return s
}

// WithLogger sets an optional logger. A nil logger disables logging.
func (s *HTTPSink) WithLogger(logger *zerolog.Logger) *HTTPSink {
	s.logger = logger

	return s
}

// Submit posts rec and returns the endpoint's ack.
func (s *HTTPSink) Submit(ctx context.Context, rec *fingerprint.Record) (*Ack, error) {
	body, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting record: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}

	logDebug(s.logger).
		Str("url", s.url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("record submitted")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(reply))}
	}

	return decodeAck(reply)
}

// Handler serves the collection endpoint:
//
//   - POST /submit-fingerprint acknowledges a record
//   - GET /healthz reports liveness
type Handler struct {
	mux      *http.ServeMux
	logger   *zerolog.Logger
	now      func() time.Time
	observer func(Ack, []byte)
}

var _ http.Handler = (*Handler)(nil)

// NewHandler creates the endpoint handler.
func NewHandler() *Handler {
	h := &Handler{
		mux: http.NewServeMux(),
		now: time.Now,
	}
	h.mux.HandleFunc(SubmitPath, h.handleSubmit)
	h.mux.HandleFunc("/healthz", h.handleHealthz)

	return h
}

// WithLogger sets an optional logger. A nil logger disables logging.
func (h *Handler) WithLogger(logger *zerolog.Logger) *Handler {
	h.logger = logger

	return h
}

// WithClock replaces the clock used for ack timestamps.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now

	return h
}

// WithObserver registers fn to receive every accepted record body.
func (h *Handler) WithObserver(fn func(ack Ack, body []byte)) *Handler {
	h.observer = fn

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.mux.ServeHTTP(w, r)
	logDebug(h.logger).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("elapsed", time.Since(start)).
		Msg("request served")
}

// receive runs the shared submission logic for both carriers.
func (h *Handler) receive(body []byte) (Ack, error) {
	ack, err := accept(body, h.now())
	if err != nil {
		logWarn(h.logger).Err(err).Msg("malformed submission")
		return ack, err
	}

	logInfo(h.logger).Str("fingerprint_id", ack.FingerprintID).Msg("fingerprint received")
	if h.observer != nil {
		h.observer(ack, body)
	}

	return ack, nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Ack{Status: StatusFailed, Message: "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, Ack{
			Status:  StatusFailed,
			Message: "could not read fingerprint payload",
			Error:   err.Error(),
		})
		return
	}

	ack, err := h.receive(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ack)
		return
	}

	writeJSON(w, http.StatusOK, ack)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Ack{Status: StatusFailed, Message: "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Server runs a [Handler] with conservative timeouts.
type Server struct {
	http   *http.Server
	logger *zerolog.Logger
}

// NewServer binds handler to addr. It does not listen until Run.
func NewServer(addr string, handler http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run serves on l until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		logInfo(s.logger).Str("addr", l.Addr().String()).Msg("listening")
		errc <- s.http.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

func logDebug(l *zerolog.Logger) *zerolog.Event {
	if l == nil {
		return nil
	}

	return l.Debug()
}

func logInfo(l *zerolog.Logger) *zerolog.Event {
	if l == nil {
		return nil
	}

	return l.Info()
}

func logWarn(l *zerolog.Logger) *zerolog.Event {
	if l == nil {
		return nil
	}

	return l.Warn()
}
