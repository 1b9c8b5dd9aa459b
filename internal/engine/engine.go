// Package engine describes the media-processing engine the splitter drives.
// The processor only decides what to ask for; an Engine does the decoding,
// encoding and muxing.
package engine

import (
	"context"
	"fmt"
)

// Engine is the capability boundary to the external media tool.
type Engine interface {
	// Inspect returns the container and stream metadata for path.
	Inspect(ctx context.Context, path string) (*Probe, error)

	// Encode writes one trimmed, re-encoded segment. A failed run returns an
	// *Error carrying the engine's diagnostic output.
	Encode(ctx context.Context, job EncodeJob) error
}

// Probe is the subset of inspection output the splitter consumes. Values
// are kept as reported by the engine so callers can apply their own
// fallbacks.
type Probe struct {
	FormatDuration string
	Streams        []Stream
}

// Stream describes one elementary stream.
type Stream struct {
	Index      int
	CodecType  string // "video", "audio", ...
	CodecName  string
	Width      int
	Height     int
	Duration   string
	NbFrames   string
	RFrameRate string
}

// EncodeJob is a fully resolved request for a single output file.
type EncodeJob struct {
	InputPath  string
	OutputPath string

	Start  float64 // seconds
	Length float64 // seconds

	VideoEncoder string
	VideoBitrate string // e.g. "12M"
	MaxBitrate   string
	BufferSize   string
	VideoFilter  string

	AudioCodec   string
	AudioBitrate string

	Format  string
	Preset  string
	Threads int
}

// Error reports a failed engine invocation. Diagnostic holds the engine's
// own output verbatim.
type Error struct {
	Op         string
	Path       string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v\n%s", e.Op, e.Path, e.Err, e.Diagnostic)
}

func (e *Error) Unwrap() error { return e.Err }
