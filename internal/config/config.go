package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZacxDev/clipsplit/internal/platform"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// Per-clip defaults for the default platform
	DefaultSegmentLength = 60.0 // seconds
	DefaultTargetSizeMB  = 24.0 // one MB under the platform ceiling

	DefaultOutputDir = "split_videos"
	DefaultPreset    = "fast"

	// Encoders for the two codec paths
	DefaultHardwareEncoder = "h264_nvenc"
	DefaultSoftwareEncoder = "libx264"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "CLIPSPLIT_"
)

// Options holds every setting of a splitting session.
type Options struct {
	RootDir    string   `yaml:"root_dir"`
	OutputDir  string   `yaml:"output_dir"`
	Extensions []string `yaml:"extensions"`

	Platform      string  `yaml:"platform"`
	SegmentLength float64 `yaml:"segment_length"`
	TargetSizeMB  float64 `yaml:"target_size_mb"`
	MaxHeight     int     `yaml:"max_height"` // 0 means the platform's

	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Source codecs that are transcoded on the hardware encoder
	HardwareCodecs   []string `yaml:"hardware_codecs"`
	HardwareEncoder  string   `yaml:"hardware_encoder"`
	SoftwareEncoder  string   `yaml:"software_encoder"`
	HardwareFallback bool     `yaml:"hardware_fallback"`
	Preset           string   `yaml:"preset"`

	CleanOutput bool `yaml:"clean_output"`
	Watch       bool `yaml:"watch"`

	LogLevel string `yaml:"log_level"`
	Verbose  bool   `yaml:"verbose"`
}

// Default returns the options used when nothing overrides them.
func Default() *Options {
	return &Options{
		RootDir:          ".",
		OutputDir:        DefaultOutputDir,
		Extensions:       []string{".mp4"},
		Platform:         platform.Default,
		SegmentLength:    DefaultSegmentLength,
		TargetSizeMB:     DefaultTargetSizeMB,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		HardwareCodecs:   []string{"hevc"},
		HardwareEncoder:  DefaultHardwareEncoder,
		SoftwareEncoder:  DefaultSoftwareEncoder,
		HardwareFallback: true,
		Preset:           DefaultPreset,
		CleanOutput:      true,
		Watch:            true,
		LogLevel:         "info",
	}
}

// LoadFile overlays the YAML file at path onto o. Keys missing from the
// file keep their current values.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// LoadDotEnv loads <dir>/.env into the process environment. A missing file
// is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(godotenv.Load(path), "load .env")
}

// ApplyEnv overlays CLIPSPLIT_* variables found through lookup.
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = f
		return nil
	}

	str("ROOT_DIR", &o.RootDir)
	str("OUTPUT_DIR", &o.OutputDir)
	str("PLATFORM", &o.Platform)
	str("FFMPEG", &o.FFmpegPath)
	str("FFPROBE", &o.FFprobePath)
	str("HW_ENCODER", &o.HardwareEncoder)
	str("SW_ENCODER", &o.SoftwareEncoder)
	str("LOG_LEVEL", &o.LogLevel)

	if err := num("SEGMENT_LENGTH", &o.SegmentLength); err != nil {
		return err
	}
	if err := num("TARGET_SIZE_MB", &o.TargetSizeMB); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "HW_CODECS"); ok && v != "" {
		o.HardwareCodecs = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "EXTENSIONS"); ok && v != "" {
		o.Extensions = splitList(v)
	}
	return nil
}

// Finalize validates o against its platform and fills platform-derived
// defaults.
func (o *Options) Finalize() (platform.Platform, error) {
	plat, err := platform.Get(o.Platform)
	if err != nil {
		return nil, err
	}

	if o.SegmentLength <= 0 {
		return nil, errors.Errorf("segment length must be positive, got %g", o.SegmentLength)
	}
	if limit := float64(plat.GetMaxDuration()); o.SegmentLength > limit {
		return nil, errors.Errorf("segment length %gs exceeds %s maximum of %gs",
			o.SegmentLength, plat.GetName(), limit)
	}
	if o.TargetSizeMB <= 0 {
		return nil, errors.Errorf("target size must be positive, got %g", o.TargetSizeMB)
	}
	if limit := float64(plat.GetMaxFileSizeMB()); o.TargetSizeMB > limit {
		return nil, errors.Errorf("target size %gMB exceeds %s maximum of %gMB",
			o.TargetSizeMB, plat.GetName(), limit)
	}
	if len(o.Extensions) == 0 {
		return nil, errors.New("at least one file extension is required")
	}
	if o.MaxHeight < 0 {
		return nil, errors.Errorf("max height must not be negative, got %d", o.MaxHeight)
	}
	if o.MaxHeight == 0 {
		o.MaxHeight = plat.GetMaxHeight()
	}

	for i, ext := range o.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.Extensions[i] = ext
	}

	return plat, nil
}

// OutputRoot returns the directory segments are written under.
func (o *Options) OutputRoot() string {
	if filepath.IsAbs(o.OutputDir) {
		return o.OutputDir
	}
	return filepath.Join(o.RootDir, o.OutputDir)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
