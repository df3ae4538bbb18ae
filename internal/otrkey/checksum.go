package otrkey

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// Header checksums are transmitted as 48 hex characters with every third
// character a filler. reduceHash strips the fillers down to the 32-character
// MD5 the payload bytes actually hash to.
func reduceHash(h string) (string, error) {
	if len(h) != 48 {
		return "", fmt.Errorf("declared hash must be 48 characters, got %d", len(h))
	}
	var b strings.Builder
	b.Grow(32)
	for i, c := range h {
		if (i+1)%3 == 0 {
			continue
		}
		b.WriteRune(c)
	}
	reduced := strings.ToLower(b.String())
	if _, err := hex.DecodeString(reduced); err != nil {
		return "", fmt.Errorf("declared hash is not hexadecimal: %w", err)
	}
	return reduced, nil
}

// expandHash is the inverse of reduceHash, inserting a filler after every
// second character. Used when sealing containers.
func expandHash(h string) string {
	var b strings.Builder
	b.Grow(48)
	for i, c := range h {
		b.WriteRune(c)
		if i%2 == 1 {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// checksumMatches compares a computed MD5 state against a reduced header hash.
func checksumMatches(sum hash.Hash, want string) bool {
	return hex.EncodeToString(sum.Sum(nil)) == want
}

func newChecksum() hash.Hash {
	return md5.New()
}
