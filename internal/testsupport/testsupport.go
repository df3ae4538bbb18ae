// Package testsupport provides shared fixtures for package tests: throwaway
// configurations and sealed container files with known credentials.
package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"otrpipe/internal/config"
	"otrpipe/internal/otrkey"
)

// Test credentials used by sealed fixtures.
const (
	User     = "alice"
	Password = "wonderland"
	Salt     = "1a2b3c4d"
)

// NewConfig returns a validated configuration rooted in a fresh temp
// directory, with fixture credentials filled in.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkingDir = t.TempDir()
	cfg.Paths.HistoryPath = filepath.Join(cfg.Paths.WorkingDir, "history.db")
	cfg.OTR.User = User
	cfg.OTR.Password = Password
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

// WriteOtrkey seals plaintext into an encrypted container under dir and
// returns its path. fileName must end in .otrkey; the embedded plaintext
// name is fileName without that suffix.
func WriteOtrkey(t *testing.T, dir, fileName string, plaintext []byte) string {
	t.Helper()
	data, err := otrkey.Seal(plaintext, strings.TrimSuffix(fileName, ".otrkey"), User, Password, Salt)
	if err != nil {
		t.Fatalf("seal fixture: %v", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
