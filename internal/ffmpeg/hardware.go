package ffmpeg

import (
	"bufio"
	"context"
	"math"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/cpu"
)

// Encoders lists the video encoders compiled into the ffmpeg binary.
func (p *Processor) Encoders(ctx context.Context) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, errors.Wrap(err, "list ffmpeg encoders")
	}
	return parseEncoders(string(out)), nil
}

// HasEncoder reports whether ffmpeg was built with the named encoder. Any
// failure to ask counts as "no".
func (p *Processor) HasEncoder(ctx context.Context, name string) bool {
	encoders, err := p.Encoders(ctx)
	if err != nil {
		p.logger.Warn("could not list encoders", "error", err)
		return false
	}
	return encoders[name]
}

// parseEncoders reads `ffmpeg -encoders` output. Entries look like
// " V....D h264_nvenc  NVIDIA NVENC H.264 encoder" and follow a "------"
// separator line.
func parseEncoders(out string) map[string]bool {
	encoders := make(map[string]bool)
	started := false

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !started {
			started = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "V") {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

// GetOptimalThreadCount sizes ffmpeg's -threads to 75% of the physical
// cores, leaving room for the rest of the system.
func GetOptimalThreadCount() int {
	cores, err := cpu.Counts(false)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}
	return int(math.Max(1, float64(cores)*0.75))
}
