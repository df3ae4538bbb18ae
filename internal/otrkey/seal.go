package otrkey

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Seal builds an encrypted container around plaintext, the exact inverse of
// DecodeFile. It keeps the sealed side of the compatibility contract in the
// same file set as the constants it depends on; the decoder fixtures are
// produced with it.
func Seal(plaintext []byte, fileName, user, password, salt string) ([]byte, error) {
	if len(salt) != saltLength {
		return nil, fmt.Errorf("salt must be %d characters, got %d", saltLength, len(salt))
	}
	total := HeaderLength + int64(len(plaintext))

	hdr := Header{Salt: salt}
	key, err := DeriveKey(user, password, hdr)
	if err != nil {
		return nil, err
	}
	cipher, err := newLECipher(key)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, len(plaintext))
	copy(payload, plaintext)
	ecbEncrypt(cipher, payload)

	plainSum := newChecksum()
	plainSum.Write(plaintext)
	encSum := newChecksum()
	encSum.Write(payload)

	preamble := fmt.Sprintf("%s=%s&%s=%d&%s=%s&%s=%s&%s=%s",
		paramFileName, fileName,
		paramFileSize, total,
		paramEncryptedHash, expandHash(hex.EncodeToString(encSum.Sum(nil))),
		paramPlaintextHash, expandHash(hex.EncodeToString(plainSum.Sum(nil))),
		paramSalt, salt,
	)
	if len(preamble) > preambleLength {
		return nil, fmt.Errorf("preamble overflows %d bytes", preambleLength)
	}
	block := make([]byte, preambleLength)
	copy(block, preamble)

	preambleKey, err := hex.DecodeString(preambleKeyHex)
	if err != nil {
		return nil, err
	}
	preCipher, err := newLECipher(preambleKey)
	if err != nil {
		return nil, err
	}
	ecbEncrypt(preCipher, block)

	var buf bytes.Buffer
	buf.Grow(int(total))
	buf.WriteString(magic)
	buf.Write(block)
	buf.Write(payload)
	return buf.Bytes(), nil
}
