package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/stretchr/testify/require"
)

// fakeEngine returns scripted probes and encode outcomes and writes a small
// file for every successful encode.
type fakeEngine struct {
	mu sync.Mutex

	probes   map[string]*engine.Probe
	probeErr map[string]error

	// fail decides the outcome of each encode; nil means success.
	fail func(job engine.EncodeJob) error
	// partial makes failed encodes leave a truncated file behind.
	partial bool

	jobs []engine.EncodeJob
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		probes:   make(map[string]*engine.Probe),
		probeErr: make(map[string]error),
	}
}

func (f *fakeEngine) Inspect(_ context.Context, path string) (*engine.Probe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.probeErr[path]; ok {
		return nil, err
	}
	if p, ok := f.probes[path]; ok {
		return p, nil
	}
	return nil, &engine.Error{Op: "ffprobe", Path: path, Diagnostic: "Invalid data found when processing input", Err: fmt.Errorf("exit status 1")}
}

func (f *fakeEngine) Encode(_ context.Context, job engine.EncodeJob) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	fail := f.fail
	partial := f.partial
	f.mu.Unlock()

	if fail != nil {
		if err := fail(job); err != nil {
			if partial {
				_ = os.WriteFile(job.OutputPath, []byte("trunc"), 0o644)
			}
			return err
		}
	}
	body := fmt.Sprintf("segment %.3f+%.3f via %s", job.Start, job.Length, job.VideoEncoder)
	return os.WriteFile(job.OutputPath, []byte(body), 0o644)
}

func (f *fakeEngine) encodedJobs() []engine.EncodeJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.EncodeJob(nil), f.jobs...)
}

// addSource creates an empty file named name in dir and scripts a probe for
// it.
func (f *fakeEngine) addSource(t *testing.T, dir, name, codec string, duration float64) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes[path] = &engine.Probe{
		FormatDuration: fmt.Sprintf("%f", duration),
		Streams: []engine.Stream{
			{Index: 0, CodecType: "video", CodecName: codec, Width: 1920, Height: 1080},
			{Index: 1, CodecType: "audio", CodecName: "aac"},
		},
	}
	return path
}

func engineFailure(diag string) error {
	return &engine.Error{Op: "ffmpeg", Diagnostic: diag, Err: fmt.Errorf("exit status 1")}
}

// stepClock advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func testResolver(hardware bool) *Resolver {
	return &Resolver{
		HardwareCodecs:    []string{"hevc"},
		HardwareEncoder:   "h264_nvenc",
		SoftwareEncoder:   "libx264",
		HardwareAvailable: hardware,
		MaxHeight:         1080,
		AudioCodec:        "aac",
		AudioBitrate:      "128k",
		Container:         "mp4",
		Preset:            "fast",
	}
}
