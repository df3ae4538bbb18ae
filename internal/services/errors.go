package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks containers with bad magic bytes or truncated headers.
	ErrFormat = errors.New("container format error")
	// ErrChecksumPre marks a mismatch of the declared checksum of the
	// encrypted payload, detected before any decryption is attempted.
	ErrChecksumPre = errors.New("encrypted payload checksum mismatch")
	// ErrChecksumPost marks a mismatch of the reference checksum of the
	// decrypted plaintext, typically caused by wrong credentials.
	ErrChecksumPost = errors.New("decoded payload checksum mismatch")
	// ErrCredentials marks missing service credentials.
	ErrCredentials = errors.New("credentials missing")
	// ErrNetwork marks cut-list provider transport failures.
	ErrNetwork = errors.New("network error")
	// ErrParse marks malformed cut-list documents or interval strings.
	ErrParse = errors.New("parse error")
	// ErrNotFound marks the absence of a usable cut list. This is a normal
	// outcome, not a batch failure: the asset stays parked for a later run.
	ErrNotFound = errors.New("not found")
	// ErrExternalTool marks a missing cutter binary or a nonzero exit.
	ErrExternalTool = errors.New("external tool error")
	// ErrFilesystem marks working-directory I/O failures.
	ErrFilesystem = errors.New("filesystem error")
	// ErrConfiguration marks invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsBenign reports whether err represents a normal, retry-next-run outcome
// rather than a failure worth surfacing as an error.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
