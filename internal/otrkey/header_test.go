package otrkey

import (
	"bytes"
	"errors"
	"testing"

	"otrpipe/internal/services"
)

func TestParseHeaderFromSealedContainer(t *testing.T) {
	container, err := Seal([]byte("payload-bytes"), "clip_26.01.02_03-04_zdf_5_TVOON_DE.mpg.avi", testUser, testPass, testSalt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	hdr, err := ParseHeader(bytes.NewReader(container))
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	if hdr.FileName != "clip_26.01.02_03-04_zdf_5_TVOON_DE.mpg.avi" {
		t.Fatalf("file name = %q", hdr.FileName)
	}
	if hdr.FileSize != int64(len(container)) {
		t.Fatalf("file size = %d, want %d", hdr.FileSize, len(container))
	}
	if hdr.PayloadSize() != int64(len("payload-bytes")) {
		t.Fatalf("payload size = %d", hdr.PayloadSize())
	}
	if hdr.Salt != testSalt {
		t.Fatalf("salt = %q", hdr.Salt)
	}
	if len(hdr.EncryptedHash) != 32 || len(hdr.PlaintextHash) != 32 {
		t.Fatalf("hashes not reduced: %q %q", hdr.EncryptedHash, hdr.PlaintextHash)
	}
}

// HeaderLength feeds Seek offsets and size arithmetic directly, so the
// constant itself must carry the int64 type.
func TestHeaderLengthIsAnOffset(t *testing.T) {
	var offset int64 = HeaderLength
	if offset != 522 {
		t.Fatalf("header length = %d, want 522", offset)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderLength+10)
	copy(buf, "NOTOTRDATA")
	_, err := ParseHeader(bytes.NewReader(buf))
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestParseHeaderRejectsTruncatedInput(t *testing.T) {
	_, err := ParseHeader(bytes.NewReader([]byte(magic)))
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestReduceHashStripsFillers(t *testing.T) {
	expanded := expandHash("0123456789abcdef0123456789abcdef")
	if len(expanded) != 48 {
		t.Fatalf("expanded hash length = %d", len(expanded))
	}
	reduced, err := reduceHash(expanded)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if reduced != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("round trip = %q", reduced)
	}
}

func TestReduceHashRejectsWrongLength(t *testing.T) {
	if _, err := reduceHash("abc"); err == nil {
		t.Fatal("expected error for short hash")
	}
}

func TestDeriveKeyIsPure(t *testing.T) {
	hdr := Header{Salt: testSalt}
	first, err := DeriveKey(testUser, testPass, hdr)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(first) != 28 {
		t.Fatalf("key length = %d, want 28", len(first))
	}
	second, err := DeriveKey(testUser, testPass, hdr)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical inputs produced different keys")
	}

	other, err := DeriveKey(testUser, "other", hdr)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Fatal("different passwords produced the same key")
	}
	otherSalt, err := DeriveKey(testUser, testPass, Header{Salt: "ffffffff"})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(first, otherSalt) {
		t.Fatal("different salts produced the same key")
	}
}

func TestLECipherRoundTrip(t *testing.T) {
	c, err := newLECipher([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	enc := make([]byte, 8)
	c.Encrypt(enc, src)
	if bytes.Equal(enc, src) {
		t.Fatal("encryption is a no-op")
	}
	dec := make([]byte, 8)
	c.Decrypt(dec, enc)
	if !bytes.Equal(dec, src) {
		t.Fatalf("round trip = %v, want %v", dec, src)
	}
}
