package config

import (
	"github.com/spf13/pflag"
)

// RegisterFlags defines the session flags on fs with the package defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP("root", "r", d.RootDir, "Directory containing the source videos")
	fs.StringP("output", "o", d.OutputDir, "Output directory (relative paths are under --root)")
	fs.StringSlice("ext", d.Extensions, "Source file extensions to list")
	fs.StringP("target-platform", "t", d.Platform, "Platform whose clip limits apply")
	fs.Float64P("duration", "d", d.SegmentLength, "Length of each segment in seconds")
	fs.Float64P("size", "s", d.TargetSizeMB, "Target size of each segment in MB")
	fs.Int("max-height", 0, "Maximum output height (0 uses the platform limit)")
	fs.String("ffmpeg", d.FFmpegPath, "Path to the ffmpeg binary")
	fs.String("ffprobe", d.FFprobePath, "Path to the ffprobe binary")
	fs.StringSlice("hw-codecs", d.HardwareCodecs, "Source codecs transcoded with the hardware encoder")
	fs.String("hw-encoder", d.HardwareEncoder, "Hardware video encoder")
	fs.String("sw-encoder", d.SoftwareEncoder, "Software video encoder")
	fs.Bool("hw-fallback", d.HardwareFallback, "Re-encode with the software encoder when the hardware encoder fails")
	fs.String("preset", d.Preset, "Encoder preset")
	fs.Bool("clean", d.CleanOutput, "Remove previous output before starting")
	fs.Bool("watch", d.Watch, "Watch the root directory and suggest a reload on changes")
	fs.String("log-level", d.LogLevel, "Log level (trace, debug, info, warn, error)")
	fs.BoolP("verbose", "v", d.Verbose, "Enable verbose logging")
}

// ApplyFlags copies every flag the user set explicitly onto o, so flags win
// over the config file and the environment.
func (o *Options) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "root":
			o.RootDir, err = fs.GetString(f.Name)
		case "output":
			o.OutputDir, err = fs.GetString(f.Name)
		case "ext":
			o.Extensions, err = fs.GetStringSlice(f.Name)
		case "target-platform":
			o.Platform, err = fs.GetString(f.Name)
		case "duration":
			o.SegmentLength, err = fs.GetFloat64(f.Name)
		case "size":
			o.TargetSizeMB, err = fs.GetFloat64(f.Name)
		case "max-height":
			o.MaxHeight, err = fs.GetInt(f.Name)
		case "ffmpeg":
			o.FFmpegPath, err = fs.GetString(f.Name)
		case "ffprobe":
			o.FFprobePath, err = fs.GetString(f.Name)
		case "hw-codecs":
			o.HardwareCodecs, err = fs.GetStringSlice(f.Name)
		case "hw-encoder":
			o.HardwareEncoder, err = fs.GetString(f.Name)
		case "sw-encoder":
			o.SoftwareEncoder, err = fs.GetString(f.Name)
		case "hw-fallback":
			o.HardwareFallback, err = fs.GetBool(f.Name)
		case "preset":
			o.Preset, err = fs.GetString(f.Name)
		case "clean":
			o.CleanOutput, err = fs.GetBool(f.Name)
		case "watch":
			o.Watch, err = fs.GetBool(f.Name)
		case "log-level":
			o.LogLevel, err = fs.GetString(f.Name)
		case "verbose":
			o.Verbose, err = fs.GetBool(f.Name)
		}
	})
	return err
}
