package cutter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"otrpipe/internal/services"
)

// DefaultProbeBinary is the executable used to read a video's duration.
const DefaultProbeBinary = "ffprobe"

// outputCommandRunner executes one external command and returns its stdout.
type outputCommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultOutputCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = ": " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w%s", err, detail)
	}
	return output, nil
}

// Prober reads container metadata via ffprobe.
type Prober struct {
	binary string
	logger *slog.Logger
	run    outputCommandRunner
}

// NewProber returns a Prober. binary overrides the ffprobe executable name,
// empty means the default.
func NewProber(binary string, logger *slog.Logger) *Prober {
	if binary == "" {
		binary = DefaultProbeBinary
	}
	return &Prober{binary: binary, logger: logger, run: defaultOutputCommandRunner}
}

// Binary returns the executable the prober invokes.
func (p *Prober) Binary() string { return p.binary }

// Duration returns the video's total duration in milliseconds.
func (p *Prober) Duration(ctx context.Context, path string) (int64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	output, err := p.run(ctx, p.binary, args...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "cutter", "probe", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil || seconds <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "cutter", "probe",
			fmt.Sprintf("unusable duration %q for %s", strings.TrimSpace(string(output)), path), err)
	}
	return int64(math.Round(seconds * 1000)), nil
}
