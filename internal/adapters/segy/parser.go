// Package segy maps raw SEGY byte streams into the typed trace-header set
// used by the rest of the service. It reads only the header words and sample
// payloads the dashboard needs; it is a boundary mapping, not a full codec.
package segy

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/nthds/segyscope/internal/core/domain"
)

const (
	textHeaderLen   = 3200
	binaryHeaderLen = 400
	traceHeaderLen  = 240

	// Offsets inside the 400-byte binary header (SEGY rev1).
	binSampleInterval = 16 // bytes 3217-3218
	binSamplesPerTrc  = 20 // bytes 3221-3222
	binFormatCode     = 24 // bytes 3225-3226

	// Offsets inside the 240-byte trace header.
	trcCoordScalar = 70  // bytes 71-72
	trcSourceX     = 72  // bytes 73-76
	trcSourceY     = 76  // bytes 77-80
	trcSamples     = 114 // bytes 115-116
	trcInline      = 188 // bytes 189-192
	trcCrossline   = 192 // bytes 193-196
)

// sampleWidth returns the byte width of one sample for a format code, or 0
// for codes whose width is unknown. A known width is enough to scan headers
// even when the samples themselves are not decoded.
func sampleWidth(f domain.SampleFormat) int {
	switch f {
	case domain.FormatIBMFloat, domain.FormatInt32, domain.FormatFixedGain, domain.FormatIEEEFloat:
		return 4
	case domain.FormatIEEEDouble:
		return 8
	case domain.FormatInt24:
		return 3
	case domain.FormatInt16:
		return 2
	case domain.FormatInt8:
		return 1
	default:
		return 0
	}
}

// decodesAmplitudes reports whether sample values of this format are turned
// into float64 amplitudes. Known-width formats outside this set still yield
// trace headers; their payloads are skipped undecoded.
func decodesAmplitudes(f domain.SampleFormat) bool {
	switch f {
	case domain.FormatIBMFloat, domain.FormatInt32, domain.FormatInt16,
		domain.FormatIEEEFloat, domain.FormatInt8:
		return true
	default:
		return false
	}
}

// Parser implements ports.SegyParser with a sequential header scan.
//
// Header scanning always covers the whole file (the bounding box must see
// every trace); sample decoding stops after MaxSampleTraces traces to bound
// memory on large files.
type Parser struct {
	// MaxSampleTraces caps how many traces contribute amplitude samples.
	// Zero means no amplitude decoding at all; negative means unlimited.
	MaxSampleTraces int
}

// Parse reads a SEGY byte stream to EOF and returns the trace-header set
// plus any decoded amplitude samples.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*domain.TraceHeaderSet, []float64, error) {
	var read int64

	discard := func(n int) error {
		m, err := io.CopyN(io.Discard, r, int64(n))
		read += m
		return err
	}

	if err := discard(textHeaderLen); err != nil {
		return nil, nil, fmt.Errorf("textual header: %w", domain.ErrUnreadable)
	}

	binHdr := make([]byte, binaryHeaderLen)
	if n, err := io.ReadFull(r, binHdr); err != nil {
		read += int64(n)
		return nil, nil, fmt.Errorf("binary header: %w", domain.ErrUnreadable)
	}
	read += binaryHeaderLen

	interval := binary.BigEndian.Uint16(binHdr[binSampleInterval:])
	defaultSamples := int(binary.BigEndian.Uint16(binHdr[binSamplesPerTrc:]))
	format := domain.SampleFormat(int16(binary.BigEndian.Uint16(binHdr[binFormatCode:])))

	width := sampleWidth(format)
	if width == 0 {
		return nil, nil, fmt.Errorf("sample format code %d: %w", format, domain.ErrUnreadable)
	}

	ts := &domain.TraceHeaderSet{
		SampleIntervalUS: float64(interval),
		Format:           format,
	}

	var samples []float64
	hdr := make([]byte, traceHeaderLen)
	payload := make([]byte, 0, defaultSamples*width)

	for traceIdx := 0; ; traceIdx++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		n, err := io.ReadFull(r, hdr)
		read += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("trace %d header: %w", traceIdx, domain.ErrUnreadable)
		}

		th, err := decodeTraceHeader(hdr, defaultSamples)
		if err != nil {
			return nil, nil, fmt.Errorf("trace %d: %w", traceIdx, err)
		}

		decode := decodesAmplitudes(format) && (p.MaxSampleTraces < 0 || traceIdx < p.MaxSampleTraces)
		payloadLen := th.Samples * width
		if decode {
			if cap(payload) < payloadLen {
				payload = make([]byte, payloadLen)
			}
			payload = payload[:payloadLen]
			n, err := io.ReadFull(r, payload)
			read += int64(n)
			if err != nil {
				return nil, nil, fmt.Errorf("trace %d samples: %w", traceIdx, domain.ErrUnreadable)
			}
			samples = decodeSamples(samples, payload, format)
		} else {
			if err := discard(payloadLen); err != nil {
				return nil, nil, fmt.Errorf("trace %d samples: %w", traceIdx, domain.ErrUnreadable)
			}
		}

		ts.Traces = append(ts.Traces, th)
	}

	ts.ByteSize = read
	return ts, samples, nil
}

// decodeTraceHeader extracts the fields the dashboard needs from one 240-byte
// trace header, applying the coordinate scalar.
func decodeTraceHeader(hdr []byte, defaultSamples int) (domain.TraceHeader, error) {
	scalar := int16(binary.BigEndian.Uint16(hdr[trcCoordScalar:]))
	x := applyScalar(int32(binary.BigEndian.Uint32(hdr[trcSourceX:])), scalar)
	y := applyScalar(int32(binary.BigEndian.Uint32(hdr[trcSourceY:])), scalar)

	// Malformed writers can smuggle garbage into the coordinate words.
	// Reject anything non-finite instead of folding it into the bounds.
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return domain.TraceHeader{}, fmt.Errorf("non-finite coordinate: %w", domain.ErrUnreadable)
	}

	ns := int(binary.BigEndian.Uint16(hdr[trcSamples:]))
	if ns == 0 {
		ns = defaultSamples
	}

	return domain.TraceHeader{
		X:         x,
		Y:         y,
		Inline:    int32(binary.BigEndian.Uint32(hdr[trcInline:])),
		Crossline: int32(binary.BigEndian.Uint32(hdr[trcCrossline:])),
		Samples:   ns,
	}, nil
}

// applyScalar applies the SEGY coordinate scalar: positive multiplies,
// negative divides, zero means no scaling.
func applyScalar(raw int32, scalar int16) float64 {
	v := float64(raw)
	switch {
	case scalar > 0:
		return v * float64(scalar)
	case scalar < 0:
		return v / float64(-scalar)
	default:
		return v
	}
}

// decodeSamples appends the amplitude values from one trace payload.
func decodeSamples(dst []float64, payload []byte, format domain.SampleFormat) []float64 {
	switch format {
	case domain.FormatIBMFloat:
		for i := 0; i+4 <= len(payload); i += 4 {
			dst = append(dst, ibmToFloat64(binary.BigEndian.Uint32(payload[i:])))
		}
	case domain.FormatInt32:
		for i := 0; i+4 <= len(payload); i += 4 {
			dst = append(dst, float64(int32(binary.BigEndian.Uint32(payload[i:]))))
		}
	case domain.FormatInt16:
		for i := 0; i+2 <= len(payload); i += 2 {
			dst = append(dst, float64(int16(binary.BigEndian.Uint16(payload[i:]))))
		}
	case domain.FormatIEEEFloat:
		for i := 0; i+4 <= len(payload); i += 4 {
			dst = append(dst, float64(math.Float32frombits(binary.BigEndian.Uint32(payload[i:]))))
		}
	case domain.FormatInt8:
		for _, b := range payload {
			dst = append(dst, float64(int8(b)))
		}
	}
	return dst
}

// ibmToFloat64 converts an IBM System/360 hexadecimal float (format code 1).
func ibmToFloat64(bits uint32) float64 {
	if bits == 0 {
		return 0
	}
	sign := 1.0
	if bits&0x8000_0000 != 0 {
		sign = -1.0
	}
	exponent := int((bits>>24)&0x7f) - 64
	mantissa := float64(bits&0x00ff_ffff) / float64(1<<24)
	return sign * mantissa * math.Pow(16, float64(exponent))
}
