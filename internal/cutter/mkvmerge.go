package cutter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"otrpipe/internal/interval"
	"otrpipe/internal/services"
)

type mkvmergeCutter struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

func newMkvmerge(binary string, logger *slog.Logger) *mkvmergeCutter {
	if binary == "" {
		binary = BackendMkvmerge
	}
	return &mkvmergeCutter{binary: binary, logger: logger, run: defaultCommandRunner}
}

func (c *mkvmergeCutter) Name() string { return BackendMkvmerge }

// Cut runs a single mkvmerge invocation: --split parts keeps the listed
// spans and the "+" prefix appends them into one output file.
func (c *mkvmergeCutter) Cut(ctx context.Context, inPath, outPath string, keep []interval.Interval) error {
	if len(keep) == 0 {
		return services.Wrap(services.ErrExternalTool, "cutter", "mkvmerge", "empty keep timeline", nil)
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), ".cut-"+filepath.Base(outPath)+".tmp")
	args := []string{"-o", tmpPath, "--split", splitSpec(keep), inPath}

	c.logger.Debug("executing mkvmerge", "in", inPath, "out", outPath, "parts", len(keep))
	if err := c.run(ctx, c.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "cutter", "mkvmerge",
			fmt.Sprintf("cutting %s", filepath.Base(inPath)), err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "cutter", "mkvmerge",
			"mkvmerge produced no output", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrFilesystem, "cutter", "mkvmerge", "", err)
	}
	return nil
}

func splitSpec(keep []interval.Interval) string {
	parts := make([]string, 0, len(keep))
	for i, iv := range keep {
		part := formatTimestamp(iv.Start) + "-" + formatTimestamp(iv.End)
		if i > 0 {
			part = "+" + part
		}
		parts = append(parts, part)
	}
	return "parts:" + strings.Join(parts, ",")
}
