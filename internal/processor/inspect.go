package processor

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/engine"
)

// Inspector turns engine probe output into a SourceVideo.
type Inspector struct {
	engine engine.Engine
}

// NewInspector creates an Inspector backed by eng.
func NewInspector(eng engine.Engine) *Inspector {
	return &Inspector{engine: eng}
}

// Inspect describes the video at path.
func (in *Inspector) Inspect(ctx context.Context, path string) (*SourceVideo, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &InspectionError{Path: path, Reason: "file is not readable", Err: err}
	}

	probe, err := in.engine.Inspect(ctx, path)
	if err != nil {
		return nil, &InspectionError{Path: path, Reason: "engine could not read the file", Err: err}
	}

	video, audio := primaryStreams(probe.Streams)
	if video == nil {
		return nil, &InspectionError{Path: path, Reason: "no video stream found"}
	}

	duration := probeDuration(probe, video)
	if duration <= 0 {
		return nil, &InspectionError{Path: path, Reason: "could not determine video duration"}
	}

	src := &SourceVideo{
		Path:       path,
		Duration:   duration,
		VideoCodec: strings.ToLower(strings.TrimSpace(video.CodecName)),
		Width:      video.Width,
		Height:     video.Height,
	}
	if audio != nil {
		src.AudioCodec = audio.CodecName
	}
	return src, nil
}

// primaryStreams returns the first video and first audio stream.
func primaryStreams(streams []engine.Stream) (video, audio *engine.Stream) {
	for i := range streams {
		switch streams[i].CodecType {
		case "video":
			if video == nil {
				video = &streams[i]
			}
		case "audio":
			if audio == nil {
				audio = &streams[i]
			}
		}
	}
	return video, audio
}

// probeDuration tries the video stream duration, then the container
// duration, then frame count over frame rate. It returns 0 when none of
// them yields a finite positive value.
func probeDuration(probe *engine.Probe, video *engine.Stream) float64 {
	if d := parseSeconds(video.Duration); d > 0 {
		return d
	}
	if d := parseSeconds(probe.FormatDuration); d > 0 {
		return d
	}

	frames := parseSeconds(video.NbFrames)
	if frames <= 0 {
		return 0
	}
	nums := strings.Split(video.RFrameRate, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 || num <= 0 {
		return 0
	}
	return frames / (num / den)
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
