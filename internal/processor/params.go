package processor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/config"
	"github.com/ZacxDev/clipsplit/internal/engine"
	"github.com/ZacxDev/clipsplit/internal/platform"
	"golang.org/x/exp/slices"
)

// CodecPath selects between the hardware and software video encoder.
type CodecPath int

const (
	SoftwarePath CodecPath = iota
	HardwarePath
)

func (p CodecPath) String() string {
	if p == HardwarePath {
		return "hardware"
	}
	return "software"
}

// EncodeParams are the encoder settings shared by every segment of a
// source. Bitrates are in megabits per second and BufferSize in megabits.
type EncodeParams struct {
	CodecPath    CodecPath
	VideoEncoder string

	VideoBitrate float64
	MaxBitrate   float64
	BufferSize   float64
	MaxHeight    int

	AudioCodec   string
	AudioBitrate string
	Container    string
	Preset       string
	Threads      int

	// SoftwareEncoder is what a failed hardware encode falls back to.
	SoftwareEncoder string

	// HardwareUnavailable is set when the source codec asked for the
	// hardware path but the host has no hardware encoder.
	HardwareUnavailable bool
}

// ScaleFilter caps the frame height at MaxHeight, keeping the aspect ratio
// and an even width. Smaller sources pass through unscaled.
func (p EncodeParams) ScaleFilter() string {
	if p.MaxHeight <= 0 {
		return ""
	}
	return fmt.Sprintf("scale=-2:'min(%d,ih)'", p.MaxHeight)
}

// Software returns a copy of p using the software encoder.
func (p EncodeParams) Software() EncodeParams {
	p.CodecPath = SoftwarePath
	p.VideoEncoder = p.SoftwareEncoder
	return p
}

// Job builds the engine request for one segment of src.
func (p EncodeParams) Job(src, dst string, seg SegmentSpec) engine.EncodeJob {
	return engine.EncodeJob{
		InputPath:    src,
		OutputPath:   dst,
		Start:        seg.Start,
		Length:       seg.Length,
		VideoEncoder: p.VideoEncoder,
		VideoBitrate: megabits(p.VideoBitrate),
		MaxBitrate:   megabits(p.MaxBitrate),
		BufferSize:   megabits(p.BufferSize),
		VideoFilter:  p.ScaleFilter(),
		AudioCodec:   p.AudioCodec,
		AudioBitrate: p.AudioBitrate,
		Format:       p.Container,
		Preset:       p.Preset,
		Threads:      p.Threads,
	}
}

func megabits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "M"
}

// Resolver derives EncodeParams from a size budget and a source codec.
type Resolver struct {
	HardwareCodecs    []string
	HardwareEncoder   string
	SoftwareEncoder   string
	HardwareAvailable bool

	MaxHeight    int
	AudioCodec   string
	AudioBitrate string
	Container    string
	Preset       string
	Threads      int
}

// NewResolver builds a Resolver from finalized options and their platform.
func NewResolver(opts *config.Options, plat platform.Platform, hardwareAvailable bool, threads int) *Resolver {
	codecs := make([]string, 0, len(opts.HardwareCodecs))
	for _, c := range opts.HardwareCodecs {
		codecs = append(codecs, strings.ToLower(strings.TrimSpace(c)))
	}
	return &Resolver{
		HardwareCodecs:    codecs,
		HardwareEncoder:   opts.HardwareEncoder,
		SoftwareEncoder:   opts.SoftwareEncoder,
		HardwareAvailable: hardwareAvailable,
		MaxHeight:         opts.MaxHeight,
		AudioCodec:        plat.GetAudioCodec(),
		AudioBitrate:      plat.GetAudioBitrate(),
		Container:         plat.GetOutputFormat(),
		Preset:            opts.Preset,
		Threads:           threads,
	}
}

// Resolve returns the settings for a source encoded as sourceCodec, aiming
// at targetSizeMB per segment. The video bitrate, peak bitrate and buffer
// follow a 1:2:4 ratio of half, all and twice the budget.
func (r *Resolver) Resolve(sourceCodec string, targetSizeMB float64) (EncodeParams, error) {
	if !positive(targetSizeMB) {
		return EncodeParams{}, &InvalidInputError{Field: "target size", Value: targetSizeMB}
	}
	codec := strings.ToLower(strings.TrimSpace(sourceCodec))
	if codec == "" {
		return EncodeParams{}, &UnsupportedCodecError{}
	}

	params := EncodeParams{
		CodecPath:       SoftwarePath,
		VideoEncoder:    r.SoftwareEncoder,
		VideoBitrate:    targetSizeMB / 2,
		MaxBitrate:      targetSizeMB,
		BufferSize:      targetSizeMB * 2,
		MaxHeight:       r.MaxHeight,
		AudioCodec:      r.AudioCodec,
		AudioBitrate:    r.AudioBitrate,
		Container:       r.Container,
		Preset:          r.Preset,
		Threads:         r.Threads,
		SoftwareEncoder: r.SoftwareEncoder,
	}

	if slices.Contains(r.HardwareCodecs, codec) {
		if r.HardwareAvailable {
			params.CodecPath = HardwarePath
			params.VideoEncoder = r.HardwareEncoder
		} else {
			params.HardwareUnavailable = true
		}
	}
	return params, nil
}

var containerExtensions = map[string]string{
	"matroska": "mkv",
	"mpegts":   "ts",
}

// SegmentFileName returns "<stem>_segment_<NNN>.<ext>" for the source at
// src.
func SegmentFileName(src string, index int, container string) string {
	ext, ok := containerExtensions[container]
	if !ok {
		ext = container
	}
	return fmt.Sprintf("%s_segment_%03d.%s", Stem(src), index, ext)
}

// Stem returns the file name of src without directory or extension.
func Stem(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
