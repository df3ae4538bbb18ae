package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// WorkingDir is the root of the durable pipeline state; the Encoded,
	// Decoded, Decoded/Archive and Cut sub-areas live underneath it.
	WorkingDir string `toml:"working_dir"`
	LogDir     string `toml:"log_dir"`
	// HistoryPath locates the SQLite run-history database. Defaults to
	// history.db inside the working directory.
	HistoryPath string `toml:"history_path"`
}

// OTR contains the recording service credentials used for decoding.
type OTR struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Cutlist configures the cut-list provider collaborator.
type Cutlist struct {
	BaseURL string `toml:"base_url"`
	// MinRating is the inclusive acceptance threshold; zero accepts all.
	MinRating float64 `toml:"min_rating"`
	// Submission settings for self-authored cut lists.
	Submit       bool   `toml:"submit"`
	AccessToken  string `toml:"access_token"`
	SubmitRating int    `toml:"submit_rating"`
}

// Cutter selects and configures the external cutting tool.
type Cutter struct {
	// Backend is "mkvmerge" or "ffmpeg".
	Backend string `toml:"backend"`
	// Binary overrides the backend's default executable name.
	Binary string `toml:"binary"`
	// FrameRate converts frame-based cut lists to time. The recording
	// service broadcasts PAL material, hence the 25 fps default.
	FrameRate float64 `toml:"frame_rate"`
}

// Workers sizes the two independent concurrency domains.
type Workers struct {
	// Decode bounds intra-file payload decryption parallelism; zero means
	// the logical core count.
	Decode int `toml:"decode"`
	// Cut bounds how many decoded assets are cut concurrently.
	Cut int `toml:"cut"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths   Paths   `toml:"paths"`
	OTR     OTR     `toml:"otr"`
	Cutlist Cutlist `toml:"cutlist"`
	Cutter  Cutter  `toml:"cutter"`
	Workers Workers `toml:"workers"`
	Logging Logging `toml:"logging"`
}

// ErrNotFound reports a missing configuration file.
var ErrNotFound = errors.New("configuration file not found")

// DefaultPath returns the conventional configuration file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "otrpipe", "config.toml"), nil
}

// Load reads the configuration at path (or the default path when empty),
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run \"otrpipe config init\" to create one)", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o600)
}
