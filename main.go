package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZacxDev/clipsplit/internal/config"
	"github.com/ZacxDev/clipsplit/internal/discovery"
	"github.com/ZacxDev/clipsplit/internal/ffmpeg"
	"github.com/ZacxDev/clipsplit/internal/logging"
	"github.com/ZacxDev/clipsplit/internal/platform"
	"github.com/ZacxDev/clipsplit/internal/processor"
	"github.com/ZacxDev/clipsplit/internal/shell"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "clipsplit",
		Short: "Split videos into upload-sized segments for social media",
		Long: `clipsplit cuts the videos in a directory into fixed-length segments that fit
a platform's clip length and file size limits.

Run without a subcommand it lists the videos in --root and lets you pick
which ones to split.

Examples:
  # Pick videos from the current directory interactively
  clipsplit

  # Split two files into 30-second TikTok segments
  clipsplit split -t tiktok -d 30 a.mp4 b.mp4

  # Show the segments and encoder settings without encoding
  clipsplit plan a.mp4`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.interactive(cmd.Context())
		},
	}

	splitCmd = &cobra.Command{
		Use:   "split <video>...",
		Short: "Split the given videos without prompting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.split(cmd.Context(), args)
		},
	}

	planCmd = &cobra.Command{
		Use:   "plan <video>",
		Short: "Print the segments and encoder settings for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.plan(cmd.Context(), args[0])
		},
	}

	platformsCmd = &cobra.Command{
		Use:   "platforms",
		Short: "List the supported platforms and their limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPlatforms(cmd)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(platformsCmd)
}

// app is everything one command invocation needs.
type app struct {
	opts     *config.Options
	platform platform.Platform
	logger   hclog.Logger
	engine   *ffmpeg.Processor
	resolver *processor.Resolver
}

// loadOptions layers defaults, the config file, .env, the environment and
// explicit flags, in that order.
func loadOptions(cmd *cobra.Command) (*config.Options, platform.Platform, error) {
	opts := config.Default()
	if configPath != "" {
		if err := opts.LoadFile(configPath); err != nil {
			return nil, nil, err
		}
	}

	root := opts.RootDir
	if f := cmd.Flags().Lookup("root"); f != nil && f.Changed {
		root = f.Value.String()
	}
	if err := config.LoadDotEnv(root); err != nil {
		return nil, nil, err
	}
	if err := opts.ApplyEnv(os.LookupEnv); err != nil {
		return nil, nil, err
	}
	if err := opts.ApplyFlags(cmd.Flags()); err != nil {
		return nil, nil, errors.Wrap(err, "read flags")
	}

	plat, err := opts.Finalize()
	if err != nil {
		return nil, nil, err
	}
	return opts, plat, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	opts, plat, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(opts.LogLevel, opts.Verbose, os.Stderr)
	eng := ffmpeg.NewProcessor(opts.FFmpegPath, opts.FFprobePath, logger, opts.Verbose)

	hardware := eng.HasEncoder(cmd.Context(), opts.HardwareEncoder)
	threads := ffmpeg.GetOptimalThreadCount()
	logger.Debug("encoder setup", "platform", plat.GetName(), "hardware_encoder", opts.HardwareEncoder,
		"hardware_available", hardware, "threads", threads)

	return &app{
		opts:     opts,
		platform: plat,
		logger:   logger,
		engine:   eng,
		resolver: processor.NewResolver(opts, plat, hardware, threads),
	}, nil
}

func (a *app) orchestrator(out *os.File) *processor.Orchestrator {
	return processor.NewOrchestrator(a.engine, a.resolver, a.opts.OutputRoot(), a.logger,
		processor.WithObserver(shell.Progress(out)),
		processor.WithHardwareFallback(a.opts.HardwareFallback),
	)
}

func (a *app) interactive(ctx context.Context) error {
	if err := discovery.PrepareOutput(a.opts.OutputRoot(), a.opts.CleanOutput); err != nil {
		return err
	}

	cfg := shell.Config{
		SegmentLength: a.opts.SegmentLength,
		TargetSizeMB:  a.opts.TargetSizeMB,
		Logger:        a.logger,
	}
	if a.opts.Watch {
		changes, err := discovery.Watch(ctx, a.opts.RootDir, a.logger.Named("watch"))
		if err != nil {
			a.logger.Warn("directory watching disabled", "error", err)
		} else {
			cfg.Changes = changes
		}
	}

	fmt.Printf("clipsplit: %s segments of up to %gs and %gMB\n",
		a.platform.GetName(), a.opts.SegmentLength, a.opts.TargetSizeMB)
	fmt.Println(strings.Repeat("-", 60))

	lister := shell.ListerFunc(func() ([]string, error) {
		return discovery.List(a.opts.RootDir, a.opts.Extensions)
	})
	return shell.New(lister, a.orchestrator(os.Stdout), cfg, os.Stdin, os.Stdout).Run(ctx)
}

func (a *app) split(ctx context.Context, sources []string) error {
	if err := discovery.PrepareOutput(a.opts.OutputRoot(), false); err != nil {
		return err
	}

	results, err := a.orchestrator(os.Stdout).Run(ctx, sources, a.opts.SegmentLength, a.opts.TargetSizeMB)
	failed := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Printf("\n%s: %v\n", res.Source, res.Err)
		default:
			failed += res.Failed()
			fmt.Printf("\n%s: %d segments written, %d failed\n", res.Source, res.Succeeded(), res.Failed())
			for _, p := range res.Outputs() {
				fmt.Printf("- %s\n", p)
			}
		}
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d segments or sources failed", failed)
	}
	return nil
}

func (a *app) plan(ctx context.Context, path string) error {
	video, err := processor.NewInspector(a.engine).Inspect(ctx, path)
	if err != nil {
		return err
	}
	segments, err := processor.Plan(video.Duration, a.opts.SegmentLength)
	if err != nil {
		return err
	}
	params, err := a.resolver.Resolve(video.VideoCodec, a.opts.TargetSizeMB)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %.3fs %s %dx%d\n", path, video.Duration, video.VideoCodec, video.Width, video.Height)
	fmt.Printf("encoder: %s (%s), bitrate %gM, maxrate %gM, bufsize %gM, filter %s\n",
		params.VideoEncoder, params.CodecPath, params.VideoBitrate, params.MaxBitrate, params.BufferSize,
		params.ScaleFilter())
	if params.HardwareUnavailable {
		fmt.Println("note: no hardware encoder found, software encoding will be used")
	}
	for _, seg := range segments {
		fmt.Printf("%3d  %10.3f  %8.3f  %s\n", seg.Index, seg.Start, seg.Length,
			processor.SegmentFileName(path, seg.Index, params.Container))
	}
	return nil
}

func printPlatforms(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	for _, name := range platform.GetSupportedPlatforms() {
		p, err := platform.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-10s  max %4ds  %5dMB  %4dp  %s/%s\n", p.GetName(), p.GetMaxDuration(),
			p.GetMaxFileSizeMB(), p.GetMaxHeight(), p.GetAudioCodec(), p.GetOutputFormat())
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
