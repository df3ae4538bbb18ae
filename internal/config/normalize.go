package config

import (
	"os"
	"path/filepath"
	"strings"
)

// normalize expands paths and fills derived defaults after unmarshalling.
func (c *Config) normalize() {
	c.Paths.WorkingDir = expandPath(c.Paths.WorkingDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
	c.Paths.HistoryPath = expandPath(c.Paths.HistoryPath)
	if c.Paths.HistoryPath == "" && c.Paths.WorkingDir != "" {
		c.Paths.HistoryPath = filepath.Join(c.Paths.WorkingDir, "history.db")
	}

	c.Cutlist.BaseURL = strings.TrimRight(strings.TrimSpace(c.Cutlist.BaseURL), "/")
	c.Cutter.Backend = strings.ToLower(strings.TrimSpace(c.Cutter.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}
