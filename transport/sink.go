// Package transport delivers collected records to a collection endpoint and
// serves that endpoint.
//
// Two carriers are provided. [HTTPSink] posts the record as JSON to
// <base>/submit-fingerprint and [Handler] answers that route. [NATSSink]
// sends the record as a NATS request and [NATSResponder] replies to it.
// Both reply with the same [Ack].
//
// Delivery is attempted once. There is no retry, batching or queueing.
package transport

//go:generate mockgen -destination=mock_sink.go -package=transport github.com/slashdevops/fingerprint/transport Sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/slashdevops/fingerprint"
)

// SubmitPath is the HTTP route that accepts records.
const SubmitPath = "/submit-fingerprint"

// MissingID is echoed when a submitted record has no identifier.
const MissingID = "missing"

// Ack statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "error"
)

// Ack is the endpoint's reply to a submission.
type Ack struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	FingerprintID string `json:"fingerprintId,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Sink delivers a finished record.
type Sink interface {
	Submit(ctx context.Context, rec *fingerprint.Record) (*Ack, error)
}

// ErrRejected is returned when the endpoint answered with an error ack.
var ErrRejected = errors.New("submission rejected")

// encodeRecord refuses records that have not been finalized.
func encodeRecord(rec *fingerprint.Record) ([]byte, error) {
	if rec == nil || !rec.Frozen() {
		return nil, errors.New("record is not finalized")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	return data, nil
}

// accept validates a submitted body and builds the ack for it.
func accept(body []byte, now time.Time) (Ack, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Ack{
			Status:  StatusFailed,
			Message: "invalid fingerprint payload",
			Error:   err.Error(),
		}, err
	}

	id := MissingID
	if raw, ok := fields[fingerprint.IdentifierKey]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			id = s
		}
	}

	return Ack{
		Status:        StatusSuccess,
		Message:       "fingerprint received",
		FingerprintID: id,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}, nil
}

// decodeAck parses an endpoint reply and turns an error ack into an error.
func decodeAck(data []byte) (*Ack, error) {
	var ack Ack
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("decoding ack: %w", err)
	}
	if ack.Status == StatusFailed {
		return &ack, fmt.Errorf("%w: %s", ErrRejected, ack.Message)
	}

	return &ack, nil
}
