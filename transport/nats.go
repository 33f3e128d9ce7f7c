package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/slashdevops/fingerprint"
)

// DefaultSubject is the NATS subject records are requested on.
const DefaultSubject = "fingerprint.submit"

// NATSSink sends records as NATS requests and waits for the ack.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	logger  *zerolog.Logger
}

var _ Sink = (*NATSSink)(nil)

// NewNATSSink creates a sink requesting on subject over conn. An empty
// subject uses [DefaultSubject].
func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATSSink{conn: conn, subject: subject}
}

// WithLogger sets an optional logger. A nil logger disables logging.
func (s *NATSSink) WithLogger(logger *zerolog.Logger) *NATSSink {
	s.logger = logger

	return s
}

// Submit requests rec on the sink's subject. The ctx deadline bounds the
// wait for a reply.
func (s *NATSSink) Submit(ctx context.Context, rec *fingerprint.Record) (*Ack, error) {
	data, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHTTPTimeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := s.conn.RequestWithContext(ctx, s.subject, data)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", s.subject, err)
	}

	logDebug(s.logger).
		Str("subject", s.subject).
		Dur("elapsed", time.Since(start)).
		Msg("record submitted")

	return decodeAck(msg.Data)
}

// NATSResponder answers record requests with the same ack the HTTP
// endpoint gives.
type NATSResponder struct {
	handler *Handler
	sub     *nats.Subscription
}

// NewNATSResponder subscribes handler's submission logic to subject. An
// empty subject uses [DefaultSubject]. Call Close to unsubscribe.
func NewNATSResponder(conn *nats.Conn, subject string, handler *Handler) (*NATSResponder, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	r := &NATSResponder{handler: handler}
	sub, err := conn.Subscribe(subject, r.respond)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	r.sub = sub

	return r, nil
}

func (r *NATSResponder) respond(msg *nats.Msg) {
	ack, _ := r.handler.receive(msg.Data)

	data, err := json.Marshal(ack)
	if err != nil {
		logWarn(r.handler.logger).Err(err).Msg("encoding ack")
		return
	}
	if err := msg.Respond(data); err != nil {
		logWarn(r.handler.logger).Err(err).Str("subject", msg.Subject).Msg("replying to submission")
	}
}

// Close drains the subscription.
func (r *NATSResponder) Close() error {
	return r.sub.Drain()
}
