package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/hashicorp/go-hclog"
)

// Driver encodes single segments and never lets an engine failure escape
// as an error: failures come back inside the SegmentResult.
type Driver struct {
	engine   engine.Engine
	logger   hclog.Logger
	fallback bool
	now      func() time.Time
}

// NewDriver creates a Driver. With fallback set, a segment that fails on
// the hardware encoder is attempted once more with the software encoder.
func NewDriver(eng engine.Engine, logger hclog.Logger, fallback bool) *Driver {
	return &Driver{
		engine:   eng,
		logger:   logger,
		fallback: fallback,
		now:      time.Now,
	}
}

// Encode writes segment spec of src into outputDir, replacing any file of
// the same name.
func (d *Driver) Encode(ctx context.Context, src *SourceVideo, spec SegmentSpec, params EncodeParams, outputDir string) SegmentResult {
	outputPath := filepath.Join(outputDir, SegmentFileName(src.Path, spec.Index, params.Container))
	log := d.logger.With("segment", spec.Index, "output", outputPath)

	res := SegmentResult{
		Index:      spec.Index,
		OutputPath: outputPath,
	}

	start := d.now()
	log.Debug("encoding segment", "start", spec.Start, "length", spec.Length, "encoder", params.VideoEncoder)
	err := d.engine.Encode(ctx, params.Job(src.Path, outputPath, spec))

	var hardwareErr error
	if err != nil && d.fallback && params.CodecPath == HardwarePath && ctx.Err() == nil {
		log.Warn("hardware encode failed, retrying with software encoder",
			"encoder", params.VideoEncoder, "fallback", params.SoftwareEncoder, "error", err)
		d.removePartial(log, outputPath)

		res.Fallback = true
		hardwareErr = err
		err = d.engine.Encode(ctx, params.Software().Job(src.Path, outputPath, spec))
	}
	res.Elapsed = d.now().Sub(start)

	if err != nil {
		d.removePartial(log, outputPath)
		ee := newEncodeError(src.Path, spec.Index, err)
		if hardwareErr != nil {
			hw := newEncodeError(src.Path, spec.Index, hardwareErr)
			ee.Diagnostic = fmt.Sprintf("%s: %v\n%s\n%s: %v\n%s",
				params.VideoEncoder, hw.Err, hw.Diagnostic,
				params.SoftwareEncoder, ee.Err, ee.Diagnostic)
		}
		res.Err = ee
		log.Error("segment failed", "elapsed", res.Elapsed, "error", err)
		return res
	}

	log.Debug("segment written", "elapsed", res.Elapsed)
	return res
}

// withLogger returns a copy of d logging through logger.
func (d *Driver) withLogger(logger hclog.Logger) *Driver {
	c := *d
	c.logger = logger
	return &c
}

// removePartial deletes whatever the engine left at path after a failure.
func (d *Driver) removePartial(log hclog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("could not remove partial output", "error", err)
	}
}
