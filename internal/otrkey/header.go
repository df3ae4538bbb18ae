package otrkey

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"otrpipe/internal/services"
)

// Compatibility constants of the container layout. These mirror the origin
// encoder and must not change.
const (
	magic          = "OTRKEYFILE"
	magicLength    = len(magic)
	preambleLength = 512
	// HeaderLength is the byte count of magic plus encrypted preamble. Typed
	// int64 because it participates in file offset and size arithmetic.
	HeaderLength int64 = int64(magicLength + preambleLength)

	blockSize    = 8
	maxChunkSize = 10 * 1024 * 1024 // multiple of blockSize

	preambleKeyHex = "EF3AB29CD19F0CAC5759C7ABD12CC92BA3FE0AFEBF960D63FEBD0F45"
)

// Preamble parameter keys.
const (
	paramFileName      = "FN"
	paramFileSize      = "SZ"
	paramEncryptedHash = "OH"
	paramPlaintextHash = "FH"
	paramSalt          = "SN"
)

// Header holds the decrypted preamble of an encrypted container.
type Header struct {
	// FileName is the name of the plaintext file the container decodes to.
	FileName string
	// FileSize is the total container size in bytes, header included.
	FileSize int64
	// EncryptedHash is the declared MD5 of the encrypted payload, reduced
	// to 32 hex characters.
	EncryptedHash string
	// PlaintextHash is the reference MD5 of the decoded payload, reduced to
	// 32 hex characters.
	PlaintextHash string
	// Salt is the 8-character key-derivation salt.
	Salt string
}

// PayloadSize returns the byte count of the encrypted payload.
func (h Header) PayloadSize() int64 {
	return h.FileSize - HeaderLength
}

// ParseHeader reads and decrypts the container header from r. It fails with a
// format error when the magic bytes do not match, the header is truncated, or
// required preamble parameters are missing.
func ParseHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "read header", "container too short", err)
	}
	if string(buf[:magicLength]) != magic {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "check magic",
			fmt.Sprintf("container does not start with %q", magic), nil)
	}

	key, err := hex.DecodeString(preambleKeyHex)
	if err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "preamble key", "", err)
	}
	cipher, err := newLECipher(key)
	if err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "preamble cipher", "", err)
	}
	preamble := buf[magicLength:]
	ecbDecrypt(cipher, preamble)

	params, err := parseParams(string(preamble),
		paramFileName, paramFileSize, paramEncryptedHash, paramPlaintextHash, paramSalt)
	if err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "parse preamble", "", err)
	}

	size, err := strconv.ParseInt(params[paramFileSize], 10, 64)
	if err != nil || size < HeaderLength {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "parse preamble",
			fmt.Sprintf("implausible file size %q", params[paramFileSize]), nil)
	}
	encHash, err := reduceHash(params[paramEncryptedHash])
	if err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "parse preamble", "encrypted hash", err)
	}
	plainHash, err := reduceHash(params[paramPlaintextHash])
	if err != nil {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "parse preamble", "plaintext hash", err)
	}
	salt := params[paramSalt]
	if len(salt) != saltLength {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "parse preamble",
			fmt.Sprintf("salt must be %d characters, got %d", saltLength, len(salt)), nil)
	}

	return Header{
		FileName:      params[paramFileName],
		FileSize:      size,
		EncryptedHash: encHash,
		PlaintextHash: plainHash,
		Salt:          salt,
	}, nil
}

// parseParams splits a "k=v&k=v" preamble string into a map, verifying the
// required keys are all present. Trailing padding bytes are ignored.
func parseParams(s string, required ...string) (map[string]string, error) {
	s = strings.TrimRight(s, "\x00")
	params := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params[k] = v
	}
	for _, key := range required {
		if _, ok := params[key]; !ok {
			return nil, fmt.Errorf("preamble parameter %q missing", key)
		}
	}
	return params, nil
}
