// Package processor plans how a video is cut into upload-sized segments and
// drives the engine through the encodes, one source and one segment at a
// time.
package processor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/ZacxDev/clipsplit/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Orchestrator runs Inspect, Plan, Resolve and Encode for each source.
// Sources and their segments are processed sequentially, in order.
type Orchestrator struct {
	inspector  *Inspector
	resolver   *Resolver
	driver     *Driver
	outputRoot string
	logger     hclog.Logger
	observer   func(Event)
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers fn to receive every state change.
func WithObserver(fn func(Event)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithHardwareFallback toggles the software retry after a hardware encoder
// failure. It is on by default.
func WithHardwareFallback(enabled bool) Option {
	return func(o *Orchestrator) { o.driver.fallback = enabled }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.driver.now = now
	}
}

// NewOrchestrator creates an Orchestrator writing under outputRoot.
func NewOrchestrator(eng engine.Engine, resolver *Resolver, outputRoot string, logger hclog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.Named("processor")

	o := &Orchestrator{
		inspector:  NewInspector(eng),
		resolver:   resolver,
		driver:     NewDriver(eng, logger, true),
		outputRoot: outputRoot,
		logger:     logger,
		observer:   func(Event) {},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes sources in order and returns one BatchResult per source
// attempted. Failed segments and unusable sources are reported in the
// results; the returned error is reserved for ErrNoSources, an *InputError
// when no source could be planned, or context cancellation.
func (o *Orchestrator) Run(ctx context.Context, sources []string, segmentLength, targetSizeMB float64) ([]BatchResult, error) {
	if len(sources) == 0 {
		return nil, errors.WithStack(ErrNoSources)
	}

	log := o.logger.With("run", uuid.NewString())
	log.Info("starting run", "sources", len(sources), "segment_length", segmentLength, "target_size_mb", targetSizeMB)

	results := make([]BatchResult, 0, len(sources))
	var fatal []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "run interrupted")
		}

		res := o.runSource(ctx, log.With("source", src), src, segmentLength, targetSizeMB)
		if res.Err != nil {
			fatal = append(fatal, res.Err)
		}
		results = append(results, res)
	}

	if len(fatal) == len(sources) {
		return results, &InputError{Failures: fatal}
	}
	return results, nil
}

func (o *Orchestrator) runSource(ctx context.Context, log hclog.Logger, path string, segmentLength, targetSizeMB float64) BatchResult {
	res := BatchResult{Source: path}
	start := o.now()
	o.emit(Event{Source: path, State: StatePending})

	fail := func(err error) BatchResult {
		res.Err = err
		res.Elapsed = o.now().Sub(start)
		log.Error("skipping source", "error", err)
		o.emit(Event{Source: path, State: StateCompleted, Batch: &res})
		return res
	}

	o.emit(Event{Source: path, State: StateInspecting})
	video, err := o.inspector.Inspect(ctx, path)
	if err != nil {
		return fail(err)
	}
	res.Video = video
	log.Debug("inspected source", "duration", video.Duration, "codec", video.VideoCodec,
		"width", video.Width, "height", video.Height)

	plan, err := Plan(video.Duration, segmentLength)
	if err != nil {
		return fail(errors.Wrapf(err, "plan %s", path))
	}

	params, err := o.resolver.Resolve(video.VideoCodec, targetSizeMB)
	if err != nil {
		var uc *UnsupportedCodecError
		if errors.As(err, &uc) {
			uc.Path = path
		}
		return fail(errors.Wrapf(err, "resolve encoder for %s", path))
	}
	res.Params = &params
	if params.HardwareUnavailable {
		log.Warn("no hardware encoder available, encoding in software", "codec", video.VideoCodec)
	}

	outputDir := filepath.Join(o.outputRoot, Stem(path))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fail(errors.Wrapf(err, "create output directory %s", outputDir))
	}

	total := len(plan)
	log.Info("planned segments", "segments", total, "encoder", params.VideoEncoder, "path", params.CodecPath)
	o.emit(Event{Source: path, State: StatePlanned, Total: total})

	driver := o.driver.withLogger(log)
	res.Segments = make([]SegmentResult, 0, total)
	for _, spec := range plan {
		if ctx.Err() != nil {
			log.Warn("run interrupted, skipping remaining segments", "next", spec.Index)
			break
		}

		o.emit(Event{Source: path, State: StateEncoding, Segment: spec.Index, Total: total})
		seg := driver.Encode(ctx, video, spec, params, outputDir)
		res.Segments = append(res.Segments, seg)

		state := StateSegmentSucceeded
		if !seg.OK() {
			state = StateSegmentFailed
		}
		o.emit(Event{Source: path, State: state, Segment: spec.Index, Total: total, Result: &seg})
	}

	res.Elapsed = o.now().Sub(start)
	log.Info("source completed", "succeeded", res.Succeeded(), "failed", res.Failed(), "elapsed", res.Elapsed)
	o.emit(Event{Source: path, State: StateCompleted, Total: total, Batch: &res})
	return res
}

func (o *Orchestrator) emit(ev Event) {
	o.observer(ev)
}
