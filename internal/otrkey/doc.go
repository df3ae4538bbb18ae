// Package otrkey decodes the proprietary encrypted container format used by
// the broadcast recording service.
//
// The format is a reverse-engineered compatibility contract: a 10-byte magic,
// a 512-byte Blowfish-encrypted preamble carrying the original file name,
// total size, payload checksums and key salt, followed by the payload
// encrypted per 8-byte block without cross-block chaining. The constants in
// this package must reproduce the origin service bit-for-bit and are
// validated by fixtures; they are not a design choice. Keep any correction to
// the scheme inside this package.
package otrkey
