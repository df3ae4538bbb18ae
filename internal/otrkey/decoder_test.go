package otrkey

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"otrpipe/internal/services"
)

const (
	testUser = "alice"
	testPass = "wonderland"
	testSalt = "1a2b3c4d"
)

func sealToFile(t *testing.T, plaintext []byte) string {
	t.Helper()
	container, err := Seal(plaintext, "movie_26.03.14_20-15_ard_90_TVOON_DE.mpg.HQ.avi", testUser, testPass, testSalt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.otrkey")
	if err := os.WriteFile(path, container, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func randomPlaintext(t *testing.T, n int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, n)
	if _, err := rng.Read(data); err != nil {
		t.Fatalf("fill plaintext: %v", err)
	}
	return data
}

func TestDecodeRoundTrip(t *testing.T) {
	plaintext := randomPlaintext(t, 100003) // deliberately not block aligned
	in := sealToFile(t, plaintext)
	out := filepath.Join(t.TempDir(), "decoded.avi")

	hdr, err := NewDecoder(2).DecodeFile(context.Background(), in, out, testUser, testPass)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hdr.FileName != "movie_26.03.14_20-15_ard_90_TVOON_DE.mpg.HQ.avi" {
		t.Fatalf("unexpected header file name %q", hdr.FileName)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("decoded payload differs from original plaintext")
	}
}

func TestDecodeWrongCredentialsFailsPostChecksum(t *testing.T) {
	in := sealToFile(t, randomPlaintext(t, 4096))
	out := filepath.Join(t.TempDir(), "decoded.avi")

	_, err := NewDecoder(1).DecodeFile(context.Background(), in, out, testUser, "not-the-password")
	if !errors.Is(err, services.ErrChecksumPost) {
		t.Fatalf("expected post-decrypt checksum error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("output file should not survive a failed decode")
	}
}

func TestDecodeCorruptedPayloadFailsBeforeDecrypting(t *testing.T) {
	in := sealToFile(t, randomPlaintext(t, 4096))
	raw, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	raw[HeaderLength+17] ^= 0xff
	if err := os.WriteFile(in, raw, 0o644); err != nil {
		t.Fatalf("corrupt fixture: %v", err)
	}

	out := filepath.Join(t.TempDir(), "decoded.avi")
	_, err = NewDecoder(1).DecodeFile(context.Background(), in, out, testUser, testPass)
	if !errors.Is(err, services.ErrChecksumPre) {
		t.Fatalf("expected pre-decrypt checksum error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("no output file may be created for a corrupt download")
	}
}

func TestDecodeMissingCredentials(t *testing.T) {
	in := sealToFile(t, randomPlaintext(t, 512))
	out := filepath.Join(t.TempDir(), "decoded.avi")

	_, err := NewDecoder(1).DecodeFile(context.Background(), in, out, "", "")
	if !errors.Is(err, services.ErrCredentials) {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestDecodeTruncatedContainer(t *testing.T) {
	in := sealToFile(t, randomPlaintext(t, 4096))
	raw, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(in, raw[:len(raw)-100], 0o644); err != nil {
		t.Fatalf("truncate fixture: %v", err)
	}

	out := filepath.Join(t.TempDir(), "decoded.avi")
	_, err = NewDecoder(1).DecodeFile(context.Background(), in, out, testUser, testPass)
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error for truncated container, got %v", err)
	}
}

func TestParallelDecodeMatchesSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("multi-chunk fixture is large")
	}
	// Spans two full chunks plus an unaligned tail so reassembly order and
	// the pass-through remainder are both exercised.
	plaintext := randomPlaintext(t, 2*maxChunkSize+8019)
	in := sealToFile(t, plaintext)

	outSeq := filepath.Join(t.TempDir(), "seq.avi")
	if _, err := NewDecoder(1).DecodeFile(context.Background(), in, outSeq, testUser, testPass); err != nil {
		t.Fatalf("sequential decode: %v", err)
	}
	outPar := filepath.Join(t.TempDir(), "par.avi")
	if _, err := NewDecoder(8).DecodeFile(context.Background(), in, outPar, testUser, testPass); err != nil {
		t.Fatalf("parallel decode: %v", err)
	}

	seq, err := os.ReadFile(outSeq)
	if err != nil {
		t.Fatalf("read sequential output: %v", err)
	}
	par, err := os.ReadFile(outPar)
	if err != nil {
		t.Fatalf("read parallel output: %v", err)
	}
	if !bytes.Equal(seq, par) {
		t.Fatal("worker count changed decode output")
	}
	if !bytes.Equal(seq, plaintext) {
		t.Fatal("decoded payload differs from original plaintext")
	}
}

func TestChunkSizes(t *testing.T) {
	cases := []struct {
		payload int64
		want    []int
	}{
		{0, nil},
		{5, []int{5}},
		{16, []int{16}},
		{21, []int{16, 5}},
		{2*maxChunkSize + 37, []int{maxChunkSize, maxChunkSize, 32, 5}},
	}
	for _, tc := range cases {
		got := chunkSizes(tc.payload)
		if len(got) != len(tc.want) {
			t.Fatalf("chunkSizes(%d) = %v, want %v", tc.payload, got, tc.want)
		}
		total := 0
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("chunkSizes(%d) = %v, want %v", tc.payload, got, tc.want)
			}
			total += got[i]
		}
		if int64(total) != tc.payload {
			t.Fatalf("chunkSizes(%d) sums to %d", tc.payload, total)
		}
	}
}
