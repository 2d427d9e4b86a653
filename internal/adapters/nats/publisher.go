package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nthds/segyscope/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure the analysis stream exists
	cfg := nats.StreamConfig{
		Name:      "SEGY_ANALYSIS",
		Subjects:  []string{"segy.analysis.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// analysisEvent is the wire shape for completed-analysis notifications. The
// full trace table stays out of the payload; consumers fetch it over HTTP.
type analysisEvent struct {
	DatasetID  string                 `json:"dataset_id"`
	FileName   string                 `json:"file_name"`
	ByteSize   int64                  `json:"byte_size"`
	Summary    domain.SurveySummary   `json:"summary"`
	Amplitudes *domain.AmplitudeStats `json:"amplitudes,omitempty"`
}

func (p *Publisher) PublishAnalysisCompleted(ctx context.Context, ds *domain.Dataset) error {
	data, err := json.Marshal(analysisEvent{
		DatasetID:  ds.ID,
		FileName:   ds.FileName,
		ByteSize:   ds.ByteSize,
		Summary:    ds.Summary,
		Amplitudes: ds.Amplitudes,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("segy.analysis.completed."+ds.ID, data)
	return err
}

func (p *Publisher) PublishAnalysisFailed(ctx context.Context, fileName, reason string) error {
	data, err := json.Marshal(map[string]string{
		"file_name": fileName,
		"reason":    reason,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("segy.analysis.failed", data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
