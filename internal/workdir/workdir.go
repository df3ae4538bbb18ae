package workdir

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"otrpipe/internal/asset"
	"otrpipe/internal/fileutil"
	"otrpipe/internal/services"
)

const (
	subEncoded = "Encoded"
	subDecoded = "Decoded"
	subArchive = "Decoded/Archive"
	subCut     = "Cut"

	lockFileName = ".otrpipe.lock"
)

// Layout addresses the sub-areas of one working directory.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{root: dir}
}

func (l Layout) Root() string    { return l.root }
func (l Layout) Encoded() string { return filepath.Join(l.root, subEncoded) }
func (l Layout) Decoded() string { return filepath.Join(l.root, subDecoded) }
func (l Layout) Archive() string { return filepath.Join(l.root, filepath.FromSlash(subArchive)) }
func (l Layout) Cut() string     { return filepath.Join(l.root, subCut) }

// DirFor maps a stage to its sub-area.
func (l Layout) DirFor(stage asset.Stage) string {
	switch stage {
	case asset.StageEncoded:
		return l.Encoded()
	case asset.StageDecoded:
		return l.Decoded()
	default:
		return l.Cut()
	}
}

// Ensure creates all sub-areas.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.root, l.Encoded(), l.Decoded(), l.Archive(), l.Cut()} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return services.Wrap(services.ErrFilesystem, "workdir", "ensure",
				fmt.Sprintf("create %s", dir), err)
		}
	}
	return nil
}

// CheckAccess verifies the working directory is fully usable. An unusable
// root is batch-fatal, unlike any per-asset failure.
func (l Layout) CheckAccess() error {
	if err := unix.Access(l.root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrFilesystem, "workdir", "access",
			fmt.Sprintf("working directory %s is not read/writable", l.root), err)
	}
	return nil
}

// Lock takes an advisory lock on the working directory so concurrent runs
// cannot race stage moves. The returned release function must be called once
// the run finishes.
func (l Layout) Lock() (func(), error) {
	fl := flock.New(filepath.Join(l.root, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workdir", "lock", "", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrFilesystem, "workdir", "lock",
			"another run holds the working directory", nil)
	}
	return func() { _ = fl.Unlock() }, nil
}
