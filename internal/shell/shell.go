// Package shell is the interactive front end: it lists the videos in the
// working directory, lets the user pick some and splits them.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/logging"
	"github.com/ZacxDev/clipsplit/internal/processor"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Lister returns the candidate videos, in display order.
type Lister interface {
	List() ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func() ([]string, error)

func (f ListerFunc) List() ([]string, error) { return f() }

// Runner splits the selected sources. *processor.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, sources []string, segmentLength, targetSizeMB float64) ([]processor.BatchResult, error)
}

// Config holds the sizing passed to every run and the optional directory
// change feed.
type Config struct {
	SegmentLength float64
	TargetSizeMB  float64

	// Changes, when set, makes the shell suggest a reload after the
	// directory contents change.
	Changes <-chan struct{}

	Logger hclog.Logger
}

const selectPrompt = "\nEnter the number of the video to process, 'cancel' to remove last selection, 'reload' to refresh the list, or 'done' to finish: "

// Shell reads commands line by line from in and writes to out.
type Shell struct {
	lister Lister
	runner Runner
	cfg    Config
	in     io.Reader
	out    io.Writer
	lines  chan string

	// done is closed when Run returns; stopped once the reader has exited.
	done    chan struct{}
	stopped chan struct{}
}

// New creates a Shell.
func New(lister Lister, runner Runner, cfg Config, in io.Reader, out io.Writer) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Shell{
		lister: lister,
		runner: runner,
		cfg:    cfg,
		in:     in,
		out:    out,
	}
}

// Run loops over select, split and the continue prompt until the user
// stops, input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.startReader()
	defer close(s.done)

	for {
		videos, err := s.lister.List()
		if err != nil {
			return errors.Wrap(err, "list videos")
		}

		selected, err := s.selectVideos(ctx, videos)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			s.println("No videos selected. Exiting...")
			return nil
		}

		results, err := s.runner.Run(ctx, selected, s.cfg.SegmentLength, s.cfg.TargetSizeMB)
		s.summarize(results)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			s.printf("\nError: %v\n", err)
		}

		s.printf("\nDo you want to process another file? (yes/no): ")
		answer, ok, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if !ok || strings.ToLower(answer) != "yes" {
			s.println("Exiting clipsplit. Goodbye!")
			return nil
		}
	}
}

func (s *Shell) selectVideos(ctx context.Context, videos []string) ([]string, error) {
	if len(videos) == 0 {
		s.println("\nNo video files found in the current directory!")
		return nil, nil
	}

	s.println("\nAvailable videos:")
	s.printList(videos)

	var selected []string
	for {
		s.notifyChanges()
		s.printf("%s", selectPrompt)

		line, ok, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return selected, nil
		}

		switch strings.ToLower(line) {
		case "done":
			return selected, nil
		case "cancel":
			if len(selected) == 0 {
				s.println("No videos to remove.")
				continue
			}
			removed := selected[len(selected)-1]
			selected = selected[:len(selected)-1]
			s.printf("Removed %s from the processing list.\n", filepath.Base(removed))
		case "reload":
			reloaded, err := s.lister.List()
			if err != nil {
				return nil, errors.Wrap(err, "reload videos")
			}
			videos = reloaded
			s.println("\nReloaded video list:")
			s.printList(videos)
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				s.println("Please enter a valid number, 'cancel', 'reload', or 'done'.")
				continue
			}
			if n < 1 || n > len(videos) {
				s.println("Invalid selection. Please enter a number from the list.")
				continue
			}
			video := videos[n-1]
			if slices.Contains(selected, video) {
				s.println("This video is already selected. Please choose another or type 'done'.")
				continue
			}
			selected = append(selected, video)
			s.printf("Added %s to the processing list.\n", filepath.Base(video))
		}
	}
}

func (s *Shell) summarize(results []processor.BatchResult) {
	for _, res := range results {
		name := filepath.Base(res.Source)
		if res.Err != nil {
			s.printf("\nCould not process %s: %v\n", name, res.Err)
			continue
		}

		if res.Failed() == 0 {
			s.printf("\nSuccessfully split %s into %d segments\n", name, res.Succeeded())
		} else {
			s.printf("\nSplit %s into %d segments, %d failed\n", name, res.Succeeded(), res.Failed())
		}
		s.printf("Total processing time: %.2f seconds\n", res.Elapsed.Seconds())

		if outputs := res.Outputs(); len(outputs) > 0 {
			s.println("\nOutput files:")
			for _, p := range outputs {
				s.printf("- %s\n", p)
			}
		}
		for _, seg := range res.Segments {
			if !seg.OK() {
				s.printf("\nSegment %d failed: %v\n", seg.Index, seg.Err)
			}
		}
	}
}

// notifyChanges prints a reload hint once per burst of directory changes.
func (s *Shell) notifyChanges() {
	if s.cfg.Changes == nil {
		return
	}
	select {
	case _, ok := <-s.cfg.Changes:
		if !ok {
			s.cfg.Changes = nil
			return
		}
		s.println("\nThe video directory changed. Type 'reload' to refresh the list.")
	default:
	}
}

func (s *Shell) printList(videos []string) {
	for i, v := range videos {
		s.printf("%d. %s\n", i+1, filepath.Base(v))
	}
}

// startReader feeds input lines to s.lines so reads can be abandoned when
// the context is cancelled. The reader exits at the end of input or, once
// Run has returned, at its next line.
func (s *Shell) startReader() {
	s.lines = make(chan string)
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)
		defer close(s.lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case s.lines <- strings.TrimSpace(scanner.Text()):
			case <-s.done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.cfg.Logger.Warn("reading input failed", "error", err)
		}
	}()
}

// readLine returns the next line, or ok=false once input is exhausted.
func (s *Shell) readLine(ctx context.Context) (string, bool, error) {
	select {
	case line, ok := <-s.lines:
		return line, ok, nil
	case <-ctx.Done():
		return "", false, errors.Wrap(ctx.Err(), "interrupted")
	}
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}
