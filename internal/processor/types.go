package processor

import (
	"fmt"
	"time"
)

// SourceVideo is an inspected input file.
type SourceVideo struct {
	Path       string
	Duration   float64 // seconds
	VideoCodec string
	Width      int
	Height     int
	AudioCodec string
}

// SegmentSpec is one slice of the source. Index is 1-based.
type SegmentSpec struct {
	Index  int
	Start  float64 // seconds
	Length float64 // seconds
}

// SegmentResult is the outcome of encoding one SegmentSpec.
type SegmentResult struct {
	Index      int
	OutputPath string
	Elapsed    time.Duration

	// Fallback is set when the hardware encoder failed and the segment was
	// encoded in software instead.
	Fallback bool

	// Err is nil on success, otherwise an *EncodeError.
	Err error
}

// OK reports whether the segment was written.
func (r SegmentResult) OK() bool { return r.Err == nil }

// BatchResult aggregates every segment of one source.
type BatchResult struct {
	Source   string
	Video    *SourceVideo
	Params   *EncodeParams
	Segments []SegmentResult
	Elapsed  time.Duration

	// Err is set when the source could not be inspected or planned. No
	// segments are attempted in that case.
	Err error
}

// Succeeded returns the number of segments written.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, s := range b.Segments {
		if s.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of segments that could not be encoded.
func (b BatchResult) Failed() int {
	return len(b.Segments) - b.Succeeded()
}

// Outputs returns the paths of the segments written, in index order.
func (b BatchResult) Outputs() []string {
	var out []string
	for _, s := range b.Segments {
		if s.OK() {
			out = append(out, s.OutputPath)
		}
	}
	return out
}

// State is a step in the life of one source during a run.
type State int

const (
	StatePending State = iota
	StateInspecting
	StatePlanned
	StateEncoding
	StateSegmentSucceeded
	StateSegmentFailed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInspecting:
		return "inspecting"
	case StatePlanned:
		return "planned"
	case StateEncoding:
		return "encoding"
	case StateSegmentSucceeded:
		return "segment-succeeded"
	case StateSegmentFailed:
		return "segment-failed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is emitted on every state change. Segment and Total are set from
// StatePlanned on; Result is set for the two segment outcome states and
// Batch for StateCompleted.
type Event struct {
	Source  string
	State   State
	Segment int
	Total   int
	Result  *SegmentResult
	Batch   *BatchResult
}
