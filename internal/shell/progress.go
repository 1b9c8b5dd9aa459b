package shell

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZacxDev/clipsplit/internal/processor"
)

// Progress returns an observer that reports segment progress to w.
func Progress(w io.Writer) func(processor.Event) {
	return func(ev processor.Event) {
		switch ev.State {
		case processor.StatePlanned:
			fmt.Fprintf(w, "\nProcessing %d segments for %s...\n", ev.Total, filepath.Base(ev.Source))
		case processor.StateEncoding:
			fmt.Fprintf(w, "\nProcessing segment %d/%d\n", ev.Segment, ev.Total)
		case processor.StateSegmentSucceeded:
			msg := "Segment %d completed in %.2f seconds\n"
			if ev.Result.Fallback {
				msg = "Segment %d completed in %.2f seconds (software fallback)\n"
			}
			fmt.Fprintf(w, msg, ev.Segment, ev.Result.Elapsed.Seconds())
		case processor.StateSegmentFailed:
			fmt.Fprintf(w, "Segment %d failed after %.2f seconds\n", ev.Segment, ev.Result.Elapsed.Seconds())
		}
	}
}
