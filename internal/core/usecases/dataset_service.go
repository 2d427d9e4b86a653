package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nthds/segyscope/internal/core/domain"
	"github.com/nthds/segyscope/internal/core/ports"
)

// DatasetService orchestrates the upload path: parse the byte stream at the
// SEGY boundary, summarize, store, and publish the analysis event.
type DatasetService struct {
	datasets ports.DatasetRepository
	parser   ports.SegyParser
	events   ports.EventPublisher // optional, may be nil
}

// NewDatasetService creates a new DatasetService. events may be nil when no
// broker is configured.
func NewDatasetService(datasets ports.DatasetRepository, parser ports.SegyParser, events ports.EventPublisher) *DatasetService {
	return &DatasetService{datasets: datasets, parser: parser, events: events}
}

// Analyze parses one uploaded file and stores the resulting dataset.
// Parse failures propagate wrapping domain.ErrUnreadable; an empty trace set
// is a valid dataset with a zero summary.
func (s *DatasetService) Analyze(ctx context.Context, fileName string, r io.Reader) (*domain.Dataset, error) {
	ts, samples, err := s.parser.Parse(ctx, r)
	if err != nil {
		if s.events != nil {
			if pubErr := s.events.PublishAnalysisFailed(ctx, fileName, err.Error()); pubErr != nil {
				slog.Warn("publish analysis failure event", "file", fileName, "error", pubErr)
			}
		}
		return nil, fmt.Errorf("analyze %s: %w", fileName, err)
	}

	ds := &domain.Dataset{
		ID:         uuid.NewString(),
		FileName:   fileName,
		ByteSize:   ts.ByteSize,
		UploadedAt: time.Now().UTC(),
		Summary:    Summarize(*ts),
		Amplitudes: ComputeAmplitudeStats(samples),
		Traces:     ts.Traces,
		Samples:    samples,
	}

	if err := s.datasets.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishAnalysisCompleted(ctx, ds); err != nil {
			slog.Warn("publish analysis event", "dataset", ds.ID, "error", err)
		}
	}

	return ds, nil
}

// GetByID returns a single dataset.
func (s *DatasetService) GetByID(ctx context.Context, id string) (*domain.Dataset, error) {
	return s.datasets.GetByID(ctx, id)
}

// List returns all datasets in upload order.
func (s *DatasetService) List(ctx context.Context) ([]domain.Dataset, error) {
	return s.datasets.List(ctx)
}

// Delete removes a dataset from the store.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	return s.datasets.Delete(ctx, id)
}

// TracePage returns a page of trace headers for scatter plots, along with
// the total trace count.
func (s *DatasetService) TracePage(ctx context.Context, id string, offset, limit int) ([]domain.TraceHeader, int, error) {
	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	total := len(ds.Traces)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return ds.Traces[offset:end], total, nil
}

// Histogram returns the amplitude distribution of one dataset.
func (s *DatasetService) Histogram(ctx context.Context, id string, bins int) ([]domain.HistogramBin, error) {
	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ds.Samples) == 0 {
		return nil, domain.ErrNoAmplitudes
	}
	return AmplitudeHistogram(ds.Samples, bins), nil
}

// Coverage aggregates survey coverage across all stored datasets: totals,
// the union of all bounding boxes, and the sum of per-dataset areas.
func (s *DatasetService) Coverage(ctx context.Context) (*domain.CoverageReport, error) {
	all, err := s.datasets.List(ctx)
	if err != nil {
		return nil, err
	}

	report := domain.CoverageReport{Datasets: len(all)}
	for _, ds := range all {
		report.Traces += ds.Summary.TraceCount
		report.TotalBytes += ds.ByteSize
		report.TotalArea += ds.Summary.Area
		if ds.Summary.Bounds == nil {
			continue
		}
		if report.Bounds == nil {
			b := *ds.Summary.Bounds
			report.Bounds = &b
		} else {
			b := report.Bounds.Union(*ds.Summary.Bounds)
			report.Bounds = &b
		}
	}
	return &report, nil
}
