package otrkey

import (
	"golang.org/x/crypto/blowfish"
)

// The origin service uses Blowfish with little-endian word order, the mirror
// image of the textbook big-endian cipher. leCipher adapts the standard
// implementation by reversing the bytes of each 32-bit half around every
// block operation.
type leCipher struct {
	inner *blowfish.Cipher
}

func newLECipher(key []byte) (*leCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &leCipher{inner: c}, nil
}

func (c *leCipher) BlockSize() int { return blowfish.BlockSize }

func (c *leCipher) Encrypt(dst, src []byte) {
	var buf [blowfish.BlockSize]byte
	swapWords(buf[:], src)
	c.inner.Encrypt(buf[:], buf[:])
	swapWords(dst, buf[:])
}

func (c *leCipher) Decrypt(dst, src []byte) {
	var buf [blowfish.BlockSize]byte
	swapWords(buf[:], src)
	c.inner.Decrypt(buf[:], buf[:])
	swapWords(dst, buf[:])
}

// swapWords copies src to dst reversing byte order within each 4-byte word.
func swapWords(dst, src []byte) {
	for i := 0; i+4 <= len(src); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+3], src[i+2], src[i+1], src[i]
	}
}

// ecbDecrypt decrypts data in place. Only the full-block prefix is touched;
// a trailing remainder shorter than one block passes through unchanged, the
// way the origin encoder leaves it.
func ecbDecrypt(c *leCipher, data []byte) {
	full := len(data) / blockSize * blockSize
	for i := 0; i < full; i += blockSize {
		c.Decrypt(data[i:i+blockSize], data[i:i+blockSize])
	}
}

// ecbEncrypt encrypts data in place, full-block prefix only.
func ecbEncrypt(c *leCipher, data []byte) {
	full := len(data) / blockSize * blockSize
	for i := 0; i < full; i += blockSize {
		c.Encrypt(data[i:i+blockSize], data[i:i+blockSize])
	}
}
