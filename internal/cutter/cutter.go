package cutter

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"otrpipe/internal/interval"
	"otrpipe/internal/services"
)

// Backend names accepted in the configuration.
const (
	BackendMkvmerge = "mkvmerge"
	BackendFfmpeg   = "ffmpeg"
)

// Cutter cuts a video down to its keep timeline.
type Cutter interface {
	Name() string
	// Cut reads inPath, keeps only the given intervals and writes the
	// result to outPath. The timeline must be normalized and non-empty.
	Cut(ctx context.Context, inPath, outPath string, keep []interval.Interval) error
}

// commandRunner executes one external command. Tests inject their own.
type commandRunner func(ctx context.Context, name string, args ...string) error

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// New returns the cutter for the configured backend. binary overrides the
// executable name, empty means the backend default.
func New(backend, binary string, logger *slog.Logger) (Cutter, error) {
	switch backend {
	case BackendMkvmerge:
		return newMkvmerge(binary, logger), nil
	case BackendFfmpeg:
		return newFfmpeg(binary, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "cutter", "new",
			fmt.Sprintf("unknown backend %q", backend), nil)
	}
}

// formatTimestamp renders milliseconds as HH:MM:SS.micro, the timestamp form
// mkvmerge expects in split specifications.
func formatTimestamp(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%06d", secs/3600, secs%3600/60, secs%60, ms%1000*1000)
}

// formatSeconds renders milliseconds as decimal seconds for ffmpeg.
func formatSeconds(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
