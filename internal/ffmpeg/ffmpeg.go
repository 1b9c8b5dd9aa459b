package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Processor runs ffprobe and ffmpeg as subprocesses. It implements
// engine.Engine.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	logger      hclog.Logger
	verbose     bool
}

var _ engine.Engine = (*Processor)(nil)

// NewProcessor creates a new FFmpeg processor. Empty paths resolve through
// $PATH. When verbose is set, ffmpeg's stderr is echoed while it runs.
func NewProcessor(ffmpegPath, ffprobePath string, logger hclog.Logger, verbose bool) *Processor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger.Named("ffmpeg"),
		verbose:     verbose,
	}
}

// Inspect runs one ffprobe JSON query against path. ffmpeg-go's probe
// helpers always run "ffprobe" from $PATH and take no context, so the
// command is run directly.
func (p *Processor) Inspect(ctx context.Context, path string) (*engine.Probe, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Trace("probing", "path", path)
	if err := cmd.Run(); err != nil {
		return nil, &engine.Error{
			Op:         "ffprobe",
			Path:       path,
			Diagnostic: strings.TrimSpace(stderr.String()),
			Err:        err,
		}
	}

	probe, err := ParseProbe(stdout.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "ffprobe %s", path)
	}
	return probe, nil
}

// Encode writes job.OutputPath, overwriting any existing file.
func (p *Processor) Encode(ctx context.Context, job engine.EncodeJob) error {
	var stderr bytes.Buffer
	var errOut io.Writer = &stderr
	if p.verbose {
		errOut = io.MultiWriter(&stderr, os.Stderr)
	}

	stream := output(job)
	stream.Context = ctx
	stream = stream.OverWriteOutput().
		SetFfmpegPath(p.ffmpegPath).
		WithErrorOutput(errOut).
		Silent(true)

	p.logger.Debug("running ffmpeg", "args", strings.Join(stream.GetArgs(), " "))
	if err := stream.Run(); err != nil {
		return &engine.Error{
			Op:         "ffmpeg",
			Path:       job.OutputPath,
			Diagnostic: strings.TrimSpace(stderr.String()),
			Err:        err,
		}
	}
	return nil
}

// BuildArgs returns the ffmpeg arguments (without the binary) for job.
func BuildArgs(job engine.EncodeJob) []string {
	return output(job).OverWriteOutput().GetArgs()
}

// output builds the trimmed input and the encoded output node for job.
func output(job engine.EncodeJob) *ffmpeg.Stream {
	input := ffmpeg.Input(job.InputPath, ffmpeg.KwArgs{
		"ss": formatSeconds(job.Start),
		"t":  formatSeconds(job.Length),
	})

	outputKwargs := ffmpeg.KwArgs{}
	for k, v := range map[string]string{
		"c:v":     job.VideoEncoder,
		"b:v":     job.VideoBitrate,
		"maxrate": job.MaxBitrate,
		"bufsize": job.BufferSize,
		"c:a":     job.AudioCodec,
		"b:a":     job.AudioBitrate,
		"f":       job.Format,
	} {
		if v != "" {
			outputKwargs[k] = v
		}
	}
	if job.VideoFilter != "" {
		outputKwargs["vf"] = job.VideoFilter
	}
	if job.Preset != "" {
		outputKwargs["preset"] = job.Preset
	}
	if job.Threads > 0 {
		outputKwargs["threads"] = job.Threads
	}
	if job.Format == "mp4" {
		outputKwargs["movflags"] = "+faststart"
	}

	return input.Output(job.OutputPath, outputKwargs)
}

// --- ffprobe JSON wire types ---

type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Duration   string `json:"duration"`
	NbFrames   string `json:"nb_frames"`
	RFrameRate string `json:"r_frame_rate"`
}

// ParseProbe converts raw ffprobe JSON into an engine.Probe.
// Exported for testing without a real ffprobe binary.
func ParseProbe(data []byte) (*engine.Probe, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse ffprobe JSON")
	}

	probe := &engine.Probe{
		FormatDuration: strings.TrimSpace(raw.Format.Duration),
		Streams:        make([]engine.Stream, 0, len(raw.Streams)),
	}
	for _, s := range raw.Streams {
		probe.Streams = append(probe.Streams, engine.Stream{
			Index:      s.Index,
			CodecType:  s.CodecType,
			CodecName:  s.CodecName,
			Width:      s.Width,
			Height:     s.Height,
			Duration:   strings.TrimSpace(s.Duration),
			NbFrames:   strings.TrimSpace(s.NbFrames),
			RFrameRate: strings.TrimSpace(s.RFrameRate),
		})
	}
	return probe, nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
