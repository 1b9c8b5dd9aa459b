package processor

import (
	"fmt"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/pkg/errors"
)

// ErrNoSources is returned by Run when there is nothing to process.
var ErrNoSources = errors.New("no sources selected")

// NotFoundError reports a source path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("video file not found: %s", e.Path)
}

// InspectionError reports a source the engine could not describe: it could
// not be read or parsed, or its metadata lacks a video stream or duration.
type InspectionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InspectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inspect %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("inspect %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *InspectionError) Unwrap() error { return e.Err }

// InvalidInputError reports a non-positive (or non-finite) planning or
// sizing input.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %g: must be a positive number", e.Field, e.Value)
}

// UnsupportedCodecError is returned when the source reports no video codec
// at all. Unrecognised codec names are not an error.
type UnsupportedCodecError struct {
	Path string
}

func (e *UnsupportedCodecError) Error() string {
	if e.Path == "" {
		return "source reports no video codec"
	}
	return fmt.Sprintf("%s reports no video codec", e.Path)
}

// EncodeError is a failed segment. Diagnostic is the engine output verbatim.
type EncodeError struct {
	Path       string
	Index      int
	Diagnostic string
	Err        error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("segment %d of %s: %v", e.Index, e.Path, e.Err)
	if e.Diagnostic != "" {
		msg += "\n" + e.Diagnostic
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

func newEncodeError(path string, index int, err error) *EncodeError {
	ee := &EncodeError{Path: path, Index: index, Err: err}

	var engErr *engine.Error
	if errors.As(err, &engErr) {
		ee.Diagnostic = engErr.Diagnostic
		ee.Err = engErr.Err
	}
	return ee
}

// InputError is returned by Run when no source got as far as a plan.
type InputError struct {
	Failures []error
}

func (e *InputError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, err := range e.Failures {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("all %d sources failed:\n%s", len(e.Failures), strings.Join(msgs, "\n"))
}

// IsInputError reports whether err means the source itself was unusable.
func IsInputError(err error) bool {
	var nf *NotFoundError
	var ie *InspectionError
	return errors.As(err, &nf) || errors.As(err, &ie)
}
