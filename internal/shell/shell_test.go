package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZacxDev/clipsplit/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls [][]string
	err   error
}

func (r *fakeRunner) Run(_ context.Context, sources []string, segmentLength, targetSizeMB float64) ([]processor.BatchResult, error) {
	r.calls = append(r.calls, sources)

	results := make([]processor.BatchResult, 0, len(sources))
	for _, src := range sources {
		results = append(results, processor.BatchResult{
			Source:  src,
			Elapsed: 1500 * time.Millisecond,
			Segments: []processor.SegmentResult{
				{Index: 1, OutputPath: "/out/" + filepath.Base(src) + "_segment_001.mp4"},
			},
		})
	}
	return results, r.err
}

func staticList(videos ...string) Lister {
	return ListerFunc(func() ([]string, error) { return videos, nil })
}

func runShell(t *testing.T, lister Lister, runner Runner, cfg Config, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := New(lister, runner, cfg, strings.NewReader(input), &out).Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestSelectionCommands(t *testing.T) {
	runner := &fakeRunner{}
	out := runShell(t, staticList("/v/a.mp4", "/v/b.mp4"), runner, Config{SegmentLength: 60, TargetSizeMB: 24},
		"1\n2\n1\ncancel\n2\ndone\nno\n")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/v/a.mp4", "/v/b.mp4"}, runner.calls[0])

	assert.Contains(t, out, "Available videos:\n1. a.mp4\n2. b.mp4\n")
	assert.Contains(t, out, "Added a.mp4 to the processing list.")
	assert.Contains(t, out, "This video is already selected. Please choose another or type 'done'.")
	assert.Contains(t, out, "Removed b.mp4 from the processing list.")
	assert.Contains(t, out, "Successfully split a.mp4 into 1 segments")
	assert.Contains(t, out, "Total processing time: 1.50 seconds")
	assert.Contains(t, out, "- /out/a.mp4_segment_001.mp4")
	assert.Contains(t, out, "Do you want to process another file? (yes/no)")
	assert.Contains(t, out, "Exiting clipsplit. Goodbye!")
}

func TestInvalidInput(t *testing.T) {
	out := runShell(t, staticList("/v/a.mp4"), &fakeRunner{}, Config{}, "abc\n0\n2\ncancel\ndone\n")

	assert.Contains(t, out, "Please enter a valid number, 'cancel', 'reload', or 'done'.")
	assert.Equal(t, 2, strings.Count(out, "Invalid selection. Please enter a number from the list."))
	assert.Contains(t, out, "No videos to remove.")
	assert.Contains(t, out, "No videos selected. Exiting...")
}

func TestEmptySelectionExits(t *testing.T) {
	runner := &fakeRunner{}
	out := runShell(t, staticList("/v/a.mp4"), runner, Config{}, "done\n")

	assert.Empty(t, runner.calls)
	assert.True(t, strings.HasSuffix(out, "No videos selected. Exiting...\n"))
}

func TestNoVideosFound(t *testing.T) {
	runner := &fakeRunner{}
	out := runShell(t, staticList(), runner, Config{}, "")

	assert.Empty(t, runner.calls)
	assert.Contains(t, out, "No video files found in the current directory!")
	assert.Contains(t, out, "No videos selected. Exiting...")
}

func TestEOFActsAsDoneThenNo(t *testing.T) {
	runner := &fakeRunner{}
	out := runShell(t, staticList("/v/a.mp4"), runner, Config{}, "1")

	require.Len(t, runner.calls, 1)
	assert.Contains(t, out, "Exiting clipsplit. Goodbye!")
}

func TestReload(t *testing.T) {
	lists := [][]string{
		{"/v/a.mp4"},
		{"/v/a.mp4", "/v/new.mp4"},
	}
	calls := 0
	lister := ListerFunc(func() ([]string, error) {
		l := lists[calls]
		if calls < len(lists)-1 {
			calls++
		}
		return l, nil
	})

	runner := &fakeRunner{}
	out := runShell(t, lister, runner, Config{}, "2\nreload\n2\ndone\nno\n")

	assert.Contains(t, out, "Invalid selection.")
	assert.Contains(t, out, "Reloaded video list:\n1. a.mp4\n2. new.mp4\n")
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/v/new.mp4"}, runner.calls[0])
}

func TestProcessAnother(t *testing.T) {
	runner := &fakeRunner{}
	out := runShell(t, staticList("/v/a.mp4", "/v/b.mp4"), runner, Config{}, "1\ndone\nYES\n2\ndone\nno\n")

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"/v/a.mp4"}, runner.calls[0])
	assert.Equal(t, []string{"/v/b.mp4"}, runner.calls[1])
	assert.Equal(t, 2, strings.Count(out, "Available videos:"))
}

func TestRunErrorKeepsShellAlive(t *testing.T) {
	runner := &fakeRunner{err: errors.New("all 1 sources failed")}
	out := runShell(t, staticList("/v/a.mp4"), runner, Config{}, "1\ndone\nno\n")

	assert.Contains(t, out, "Error: all 1 sources failed")
	assert.Contains(t, out, "Do you want to process another file?")
}

func TestSummaryReportsFailures(t *testing.T) {
	var out bytes.Buffer
	s := New(staticList(), &fakeRunner{}, Config{}, strings.NewReader(""), &out)

	s.summarize([]processor.BatchResult{
		{Source: "/v/missing.mp4", Err: &processor.NotFoundError{Path: "/v/missing.mp4"}},
		{
			Source: "/v/a.mp4",
			Segments: []processor.SegmentResult{
				{Index: 1, OutputPath: "/out/a_segment_001.mp4"},
				{Index: 2, OutputPath: "/out/a_segment_002.mp4", Err: errors.New("Conversion failed!")},
			},
		},
	})

	assert.Contains(t, out.String(), "Could not process missing.mp4: video file not found: /v/missing.mp4")
	assert.Contains(t, out.String(), "Split a.mp4 into 1 segments, 1 failed")
	assert.Contains(t, out.String(), "- /out/a_segment_001.mp4")
	assert.NotContains(t, out.String(), "- /out/a_segment_002.mp4")
	assert.Contains(t, out.String(), "Segment 2 failed: Conversion failed!")
}

func TestDirectoryChangeNotice(t *testing.T) {
	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	out := runShell(t, staticList("/v/a.mp4"), &fakeRunner{}, Config{Changes: changes}, "done\n")

	assert.Equal(t, 1, strings.Count(out, "The video directory changed. Type 'reload' to refresh the list."))
}

func TestCancelledWhileWaitingForInput(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(staticList("/v/a.mp4"), &fakeRunner{}, Config{}, r, &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderStopsAfterRun(t *testing.T) {
	var out bytes.Buffer
	s := New(staticList("/v/a.mp4"), &fakeRunner{}, Config{}, strings.NewReader("done\nleftover\nmore\n"), &out)

	require.NoError(t, s.Run(context.Background()))

	select {
	case <-s.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("input reader still running after Run returned")
	}
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	report := Progress(&out)

	report(processor.Event{Source: "/v/a.mp4", State: processor.StatePending})
	report(processor.Event{Source: "/v/a.mp4", State: processor.StatePlanned, Total: 2})
	report(processor.Event{Source: "/v/a.mp4", State: processor.StateEncoding, Segment: 1, Total: 2})
	report(processor.Event{Source: "/v/a.mp4", State: processor.StateSegmentSucceeded, Segment: 1, Total: 2,
		Result: &processor.SegmentResult{Index: 1, Elapsed: 2250 * time.Millisecond}})
	report(processor.Event{Source: "/v/a.mp4", State: processor.StateEncoding, Segment: 2, Total: 2})
	report(processor.Event{Source: "/v/a.mp4", State: processor.StateSegmentFailed, Segment: 2, Total: 2,
		Result: &processor.SegmentResult{Index: 2, Elapsed: time.Second, Err: errors.New("boom")}})

	assert.Equal(t, "\nProcessing 2 segments for a.mp4...\n"+
		"\nProcessing segment 1/2\n"+
		"Segment 1 completed in 2.25 seconds\n"+
		"\nProcessing segment 2/2\n"+
		"Segment 2 failed after 1.00 seconds\n", out.String())
}
