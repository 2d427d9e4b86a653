package usecases

import (
	"github.com/nthds/segyscope/internal/core/domain"
	"github.com/nthds/segyscope/internal/pkg/geometry"
)

// Summarize turns a trace-header set into a survey summary in one linear
// pass. It is a pure function: same input, bit-identical output, no side
// effects. An empty trace set yields a zero summary with absent bounds and
// line ranges rather than an error.
func Summarize(ts domain.TraceHeaderSet) domain.SurveySummary {
	out := domain.SurveySummary{
		TraceCount:       len(ts.Traces),
		ByteSize:         ts.ByteSize,
		SampleIntervalUS: ts.SampleIntervalUS,
	}
	if len(ts.Traces) == 0 {
		return out
	}

	var ext geometry.Extent
	il := domain.Range{Min: ts.Traces[0].Inline, Max: ts.Traces[0].Inline}
	xl := domain.Range{Min: ts.Traces[0].Crossline, Max: ts.Traces[0].Crossline}

	for _, tr := range ts.Traces {
		ext.Add(tr.X, tr.Y)
		if tr.Inline < il.Min {
			il.Min = tr.Inline
		}
		if tr.Inline > il.Max {
			il.Max = tr.Inline
		}
		if tr.Crossline < xl.Min {
			xl.Min = tr.Crossline
		}
		if tr.Crossline > xl.Max {
			xl.Max = tr.Crossline
		}
	}

	minX, maxX, minY, maxY, _ := ext.Box()
	out.Bounds = &domain.BoundingBox{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
	out.Area = out.Bounds.Area()
	out.InlineRange = &il
	out.CrosslineRange = &xl
	return out
}
