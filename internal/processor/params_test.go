package processor

import (
	"testing"

	"github.com/ZacxDev/clipsplit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCodecPath(t *testing.T) {
	cases := []struct {
		codec   string
		path    CodecPath
		encoder string
	}{
		{"hevc", HardwarePath, "h264_nvenc"},
		{"HEVC", HardwarePath, "h264_nvenc"},
		{"h264", SoftwarePath, "libx264"},
		{"prores", SoftwarePath, "libx264"},
	}

	r := testResolver(true)
	for _, tc := range cases {
		t.Run(tc.codec, func(t *testing.T) {
			params, err := r.Resolve(tc.codec, 24)
			require.NoError(t, err)

			assert.Equal(t, tc.path, params.CodecPath)
			assert.Equal(t, tc.encoder, params.VideoEncoder)
			assert.Equal(t, 12.0, params.VideoBitrate)
			assert.Equal(t, 24.0, params.MaxBitrate)
			assert.Equal(t, 48.0, params.BufferSize)
			assert.Equal(t, 1080, params.MaxHeight)
			assert.False(t, params.HardwareUnavailable)
		})
	}
}

func TestResolveWithoutHardware(t *testing.T) {
	params, err := testResolver(false).Resolve("hevc", 24)
	require.NoError(t, err)

	assert.Equal(t, SoftwarePath, params.CodecPath)
	assert.Equal(t, "libx264", params.VideoEncoder)
	assert.True(t, params.HardwareUnavailable)
}

func TestResolveMissingCodec(t *testing.T) {
	_, err := testResolver(true).Resolve("  ", 24)

	var uc *UnsupportedCodecError
	assert.ErrorAs(t, err, &uc)
}

func TestResolveInvalidTarget(t *testing.T) {
	for _, target := range []float64{0, -24} {
		_, err := testResolver(true).Resolve("h264", target)

		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "target size", invalid.Field)
	}
}

func TestJobRendersBitrates(t *testing.T) {
	params, err := testResolver(true).Resolve("h264", 25)
	require.NoError(t, err)

	job := params.Job("/in/a.mp4", "/out/a_segment_003.mp4", SegmentSpec{Index: 3, Start: 120, Length: 5})

	assert.Equal(t, "12.5M", job.VideoBitrate)
	assert.Equal(t, "25M", job.MaxBitrate)
	assert.Equal(t, "50M", job.BufferSize)
	assert.Equal(t, "scale=-2:'min(1080,ih)'", job.VideoFilter)
	assert.Equal(t, 120.0, job.Start)
	assert.Equal(t, 5.0, job.Length)
	assert.Equal(t, "aac", job.AudioCodec)
	assert.Equal(t, "128k", job.AudioBitrate)
	assert.Equal(t, "mp4", job.Format)
	assert.Equal(t, "fast", job.Preset)
}

func TestSoftwareCopy(t *testing.T) {
	params, err := testResolver(true).Resolve("hevc", 24)
	require.NoError(t, err)

	sw := params.Software()
	assert.Equal(t, SoftwarePath, sw.CodecPath)
	assert.Equal(t, "libx264", sw.VideoEncoder)
	assert.Equal(t, HardwarePath, params.CodecPath, "original params must not change")
}

func TestNewResolverFromOptions(t *testing.T) {
	opts := config.Default()
	opts.HardwareCodecs = []string{" HEVC "}
	plat, err := opts.Finalize()
	require.NoError(t, err)

	r := NewResolver(opts, plat, true, 4)
	assert.Equal(t, []string{"hevc"}, r.HardwareCodecs)
	assert.Equal(t, 1080, r.MaxHeight)
	assert.Equal(t, "mp4", r.Container)
	assert.Equal(t, 4, r.Threads)

	params, err := r.Resolve("hevc", opts.TargetSizeMB)
	require.NoError(t, err)
	assert.Equal(t, "h264_nvenc", params.VideoEncoder)
}

func TestSegmentFileName(t *testing.T) {
	assert.Equal(t, "My Trip_segment_001.mp4", SegmentFileName("/videos/My Trip.mp4", 1, "mp4"))
	assert.Equal(t, "clip.v2_segment_012.mkv", SegmentFileName("clip.v2.mov", 12, "matroska"))
	assert.Equal(t, "long_segment_1000.mp4", SegmentFileName("long.mp4", 1000, "mp4"))
	assert.Equal(t, "My Trip", Stem("/videos/My Trip.mp4"))
}
