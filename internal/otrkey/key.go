package otrkey

import (
	"crypto/md5"
	"encoding/hex"

	"otrpipe/internal/services"
)

const saltLength = 8

// DeriveKey computes the payload decryption key from the service credentials
// and the header salt. The positional interleave below reproduces the origin
// service's key schedule and must not be rearranged; fixtures in this package
// pin it down.
//
// The derivation is pure: identical inputs always yield identical key bytes.
func DeriveKey(user, password string, hdr Header) ([]byte, error) {
	if user == "" || password == "" {
		return nil, services.Wrap(services.ErrCredentials, "decode", "derive key",
			"service user and password are required", nil)
	}
	if len(hdr.Salt) != saltLength {
		return nil, services.Wrap(services.ErrFormat, "decode", "derive key", "header salt malformed", nil)
	}

	userHex := md5Hex(user)
	passHex := md5Hex(password)
	salt := hdr.Salt

	keyHex := userHex[0:13] +
		salt[0:4] +
		passHex[0:11] +
		salt[4:6] +
		userHex[21:32] +
		salt[6:8] +
		passHex[19:32]

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "decode", "derive key", "salt is not hexadecimal", err)
	}
	return key, nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
