package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a dataset ID is not in the store.
	ErrNotFound = errors.New("dataset not found")

	// ErrUnreadable is returned when an uploaded file cannot be decoded as
	// SEGY (truncated, impossible header values, non-finite coordinates).
	ErrUnreadable = errors.New("input unreadable")

	// ErrNoAmplitudes is returned when a dataset has no decoded sample
	// values to build amplitude charts from.
	ErrNoAmplitudes = errors.New("no amplitude samples decoded")
)

// SampleFormat is the SEGY binary-header data sample format code.
type SampleFormat int16

const (
	FormatIBMFloat   SampleFormat = 1
	FormatInt32      SampleFormat = 2
	FormatInt16      SampleFormat = 3
	FormatFixedGain  SampleFormat = 4
	FormatIEEEFloat  SampleFormat = 5
	FormatIEEEDouble SampleFormat = 6
	FormatInt24      SampleFormat = 7
	FormatInt8       SampleFormat = 8
)

// TraceHeader carries the per-trace fields the dashboard needs.
type TraceHeader struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Inline    int32   `json:"inline"`
	Crossline int32   `json:"crossline"`
	Samples   int     `json:"samples"`
}

// TraceHeaderSet is the typed result of parsing one SEGY file: an ordered
// sequence of trace headers plus the file-level fields the parser read on the
// way. It is immutable once produced and owned by the analysis call that
// requested the parse.
type TraceHeaderSet struct {
	Traces           []TraceHeader `json:"traces"`
	ByteSize         int64         `json:"byte_size"`
	SampleIntervalUS float64       `json:"sample_interval_us"`
	Format           SampleFormat  `json:"format"`
}

// SurveySummary is the per-file statistics record the dashboard renders.
// Bounds and the line ranges are nil for an empty trace set; absence is
// signaled explicitly, never with a zero-valued placeholder.
type SurveySummary struct {
	TraceCount       int          `json:"trace_count"`
	ByteSize         int64        `json:"byte_size"`
	Bounds           *BoundingBox `json:"bounds,omitempty"`
	Area             float64      `json:"area"`
	InlineRange      *Range       `json:"inline_range,omitempty"`
	CrosslineRange   *Range       `json:"crossline_range,omitempty"`
	SampleIntervalUS float64      `json:"sample_interval_us,omitempty"`
}

// AmplitudeStats are basic statistics over decoded trace sample values.
type AmplitudeStats struct {
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	RMS         float64 `json:"rms"`
	SampleCount int     `json:"sample_count"`
}

// HistogramBin is one bar of the amplitude-distribution chart.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Dataset is one analyzed upload. Trace headers and samples are retained in
// memory for the trace-scatter and amplitude-histogram endpoints and never
// serialized with the dataset itself.
type Dataset struct {
	ID         string          `json:"id"`
	FileName   string          `json:"file_name"`
	ByteSize   int64           `json:"byte_size"`
	UploadedAt time.Time       `json:"uploaded_at"`
	Summary    SurveySummary   `json:"summary"`
	Amplitudes *AmplitudeStats `json:"amplitudes,omitempty"`
	Traces     []TraceHeader   `json:"-"`
	Samples    []float64       `json:"-"`
}

// CoverageReport aggregates survey coverage across all stored datasets.
type CoverageReport struct {
	Datasets   int          `json:"datasets"`
	Traces     int          `json:"traces"`
	TotalBytes int64        `json:"total_bytes"`
	Bounds     *BoundingBox `json:"bounds,omitempty"`
	TotalArea  float64      `json:"total_area"`
}
