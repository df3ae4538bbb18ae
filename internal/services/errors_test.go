package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(ErrChecksumPost, "decode", "verify plaintext", "hash differs", cause)
	if !errors.Is(err, ErrChecksumPost) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrCredentials, "decode", "preflight", "", nil)
	if !errors.Is(err, ErrCredentials) {
		t.Fatalf("marker lost: %v", err)
	}
	want := "credentials missing: decode: preflight"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsToFilesystem(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("expected filesystem marker, got %v", err)
	}
}

func TestIsBenign(t *testing.T) {
	if !IsBenign(Wrap(ErrNotFound, "cut", "select", "no candidates", nil)) {
		t.Fatal("NotFound should be benign")
	}
	if IsBenign(Wrap(ErrNetwork, "cut", "query", "", nil)) {
		t.Fatal("network errors are not benign")
	}
}
