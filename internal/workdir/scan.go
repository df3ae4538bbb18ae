package workdir

import (
	"log/slog"
	"os"
	"path/filepath"

	"otrpipe/internal/asset"
	"otrpipe/internal/fileutil"
	"otrpipe/internal/services"
)

// Scan discovers assets. Explicitly submitted paths are classified and pulled
// into their stage sub-area first; when none are given, the root plus the
// Encoded, Decoded and Cut sub-areas are scanned. Files that do not match the
// filename grammar are logged and ignored. The result is sorted by key
// ascending, stage descending.
func (l Layout) Scan(inputs []string, logger *slog.Logger) ([]asset.Asset, error) {
	var assets []asset.Asset

	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			logger.Warn("ignoring input path", "path", in, "error", err)
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			logger.Warn("input path does not exist", "path", abs)
			continue
		}
		a, err := asset.Parse(abs)
		if err != nil {
			logger.Warn("not a valid video file", "path", abs)
			continue
		}
		adopted, ok, err := l.adopt(a, logger)
		if err != nil {
			return nil, err
		}
		if ok {
			assets = append(assets, adopted)
		}
	}

	if len(inputs) == 0 {
		for _, dir := range []string{l.Root(), l.Encoded(), l.Decoded(), l.Cut()} {
			found, err := l.scanDir(dir, logger)
			if err != nil {
				return nil, err
			}
			assets = append(assets, found...)
		}
	}

	asset.Sort(assets)
	return assets, nil
}

func (l Layout) scanDir(dir string, logger *slog.Logger) ([]asset.Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workdir", "scan", dir, err)
	}
	var assets []asset.Asset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		a, err := asset.Parse(path)
		if err != nil {
			if dir != l.Root() {
				logger.Warn("not a valid video file", "path", path)
			}
			continue
		}
		adopted, ok, err := l.adopt(a, logger)
		if err != nil {
			return nil, err
		}
		if ok {
			assets = append(assets, adopted)
		}
	}
	return assets, nil
}

// adopt moves an asset into the sub-area matching its stage when it lies
// elsewhere, so stage and directory membership agree before any work starts.
// A name collision in the target sub-area skips the file rather than failing
// the batch.
func (l Layout) adopt(a asset.Asset, logger *slog.Logger) (asset.Asset, bool, error) {
	target := filepath.Join(l.DirFor(a.Stage), a.FileName())
	if a.Path == target {
		return a, true, nil
	}
	if _, err := os.Stat(target); err == nil {
		logger.Warn("skipping file, same name already staged", "path", a.Path, "target", target)
		return asset.Asset{}, false, nil
	}
	if err := fileutil.MoveFile(a.Path, target); err != nil {
		return a, false, services.Wrap(services.ErrFilesystem, "workdir", "adopt", "", err)
	}
	a.Path = target
	return a, true, nil
}
