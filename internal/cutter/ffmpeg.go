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

type ffmpegCutter struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

func newFfmpeg(binary string, logger *slog.Logger) *ffmpegCutter {
	if binary == "" {
		binary = BackendFfmpeg
	}
	return &ffmpegCutter{binary: binary, logger: logger, run: defaultCommandRunner}
}

func (c *ffmpegCutter) Name() string { return BackendFfmpeg }

// Cut stream-copies each keep interval into its own segment, then joins the
// segments with the concat demuxer. Stream copy cuts on keyframes only, so
// the backend trades frame accuracy for never re-encoding.
func (c *ffmpegCutter) Cut(ctx context.Context, inPath, outPath string, keep []interval.Interval) error {
	if len(keep) == 0 {
		return services.Wrap(services.ErrExternalTool, "cutter", "ffmpeg", "empty keep timeline", nil)
	}

	workDir, err := os.MkdirTemp(filepath.Dir(outPath), ".cut-segments-")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "cutter", "ffmpeg", "", err)
	}
	defer os.RemoveAll(workDir)

	ext := filepath.Ext(outPath)
	segments := make([]string, 0, len(keep))
	for i, iv := range keep {
		segment := filepath.Join(workDir, fmt.Sprintf("segment-%03d%s", i, ext))
		args := []string{
			"-v", "error", "-y",
			"-ss", formatSeconds(iv.Start),
			"-i", inPath,
			"-t", formatSeconds(iv.Len()),
			"-c", "copy",
			segment,
		}
		c.logger.Debug("executing ffmpeg segment copy", "in", inPath, "segment", i, "of", len(keep))
		if err := c.run(ctx, c.binary, args...); err != nil {
			return services.Wrap(services.ErrExternalTool, "cutter", "ffmpeg",
				fmt.Sprintf("copying segment %d of %s", i, filepath.Base(inPath)), err)
		}
		segments = append(segments, segment)
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), ".cut-"+filepath.Base(outPath)+".tmp"+ext)
	if err := c.concat(ctx, workDir, segments, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrFilesystem, "cutter", "ffmpeg", "", err)
	}
	return nil
}

func (c *ffmpegCutter) concat(ctx context.Context, workDir string, segments []string, outPath string) error {
	if len(segments) == 1 {
		if err := os.Rename(segments[0], outPath); err != nil {
			return services.Wrap(services.ErrFilesystem, "cutter", "ffmpeg", "", err)
		}
		return nil
	}

	var manifest strings.Builder
	for _, segment := range segments {
		fmt.Fprintf(&manifest, "file '%s'\n", segment)
	}
	manifestPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return services.Wrap(services.ErrFilesystem, "cutter", "ffmpeg", "", err)
	}

	args := []string{
		"-v", "error", "-y",
		"-f", "concat", "-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outPath,
	}
	c.logger.Debug("executing ffmpeg concat", "segments", len(segments), "out", outPath)
	if err := c.run(ctx, c.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "cutter", "ffmpeg", "joining segments", err)
	}
	return nil
}
