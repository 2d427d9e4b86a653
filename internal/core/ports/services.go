package ports

import (
	"context"
	"io"

	"github.com/nthds/segyscope/internal/core/domain"
)

// SegyParser maps a raw SEGY byte stream into the typed trace-header set.
// The second return value holds decoded amplitude samples; it may be empty
// when the file's sample format is not decoded or sampling was capped.
// Decode failures are reported as (or wrap) domain.ErrUnreadable. An empty
// trace set is a valid result, not an error.
type SegyParser interface {
	Parse(ctx context.Context, r io.Reader) (*domain.TraceHeaderSet, []float64, error)
}

// EventPublisher publishes analysis lifecycle events to a message broker.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, ds *domain.Dataset) error
	PublishAnalysisFailed(ctx context.Context, fileName, reason string) error
}
