package platform

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Platform describes the clip limits of an upload destination.
type Platform interface {
	// GetName returns the platform name
	GetName() string

	// GetMaxDuration returns the maximum allowed clip duration in seconds
	GetMaxDuration() int

	// GetMaxFileSizeMB returns the maximum allowed clip size in megabytes
	GetMaxFileSizeMB() int

	// GetMaxHeight returns the tallest frame the platform keeps without
	// re-scaling on its side
	GetMaxHeight() int

	// GetAudioCodec returns the preferred audio codec
	GetAudioCodec() string

	// GetAudioBitrate returns the recommended audio bitrate
	GetAudioBitrate() string

	// GetOutputFormat returns the container format (e.g. "mp4")
	GetOutputFormat() string
}

// Default is used when no platform is configured.
const Default = "instagram"

var platforms = make(map[string]Platform)

// Register adds a platform to the registry
func Register(p Platform) {
	platforms[p.GetName()] = p
}

// Get returns a platform by name
func Get(name string) (Platform, error) {
	p, ok := platforms[name]
	if !ok {
		return nil, errors.Errorf("unsupported platform: %s", name)
	}
	return p, nil
}

// GetSupportedPlatforms returns the registered platform names in sorted order
func GetSupportedPlatforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
