package otrkey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"otrpipe/internal/services"
)

// Decoder decrypts encrypted containers. Payload blocks carry no cross-block
// chaining, so one file is split into chunks that workers decrypt
// concurrently; reassembly happens by chunk index in the writer.
type Decoder struct {
	workers int
}

// NewDecoder returns a Decoder using the given number of parallel workers.
// Values below one fall back to the logical core count.
func NewDecoder(workers int) *Decoder {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Decoder{workers: workers}
}

// DecodeFile decrypts the container at inPath into outPath and returns the
// parsed header. The declared checksum of the encrypted payload is verified
// before any decryption starts, the reference checksum of the plaintext after;
// a failure of either leaves no output file behind.
func (d *Decoder) DecodeFile(ctx context.Context, inPath, outPath, user, password string) (Header, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Header{}, services.Wrap(services.ErrFilesystem, "decode", "open container", "", err)
	}
	defer in.Close()

	hdr, err := ParseHeader(in)
	if err != nil {
		return Header{}, err
	}

	info, err := in.Stat()
	if err != nil {
		return Header{}, services.Wrap(services.ErrFilesystem, "decode", "stat container", "", err)
	}
	if info.Size() < hdr.FileSize {
		return Header{}, services.Wrap(services.ErrFormat, "decode", "check size",
			fmt.Sprintf("container is %d bytes but header declares %d", info.Size(), hdr.FileSize), nil)
	}

	// Fail fast on corrupt or truncated downloads before spending cycles on
	// key derivation and decryption.
	if err := d.verifyEncryptedPayload(in, hdr); err != nil {
		return Header{}, err
	}

	key, err := DeriveKey(user, password, hdr)
	if err != nil {
		return Header{}, err
	}

	if err := d.decryptPayload(ctx, in, outPath, hdr, key); err != nil {
		_ = os.Remove(outPath)
		return Header{}, err
	}
	return hdr, nil
}

func (d *Decoder) verifyEncryptedPayload(in *os.File, hdr Header) error {
	if _, err := in.Seek(HeaderLength, io.SeekStart); err != nil {
		return services.Wrap(services.ErrFilesystem, "decode", "seek payload", "", err)
	}
	sum := newChecksum()
	if _, err := io.CopyN(sum, in, hdr.PayloadSize()); err != nil {
		return services.Wrap(services.ErrFormat, "decode", "hash encrypted payload", "", err)
	}
	if !checksumMatches(sum, hdr.EncryptedHash) {
		return services.Wrap(services.ErrChecksumPre, "decode", "verify encrypted payload",
			"declared checksum does not match download", nil)
	}
	return nil
}

// chunkJob is one payload chunk travelling through the decode pool. done is
// closed once the worker finished decrypting data in place.
type chunkJob struct {
	data []byte
	done chan struct{}
}

func (d *Decoder) decryptPayload(ctx context.Context, in *os.File, outPath string, hdr Header, key []byte) error {
	if _, err := in.Seek(HeaderLength, io.SeekStart); err != nil {
		return services.Wrap(services.ErrFilesystem, "decode", "seek payload", "", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "decode", "create output", "", err)
	}
	defer out.Close()

	cipher, err := newLECipher(key)
	if err != nil {
		return services.Wrap(services.ErrFormat, "decode", "payload cipher", "", err)
	}

	// pending preserves the original chunk order for the writer while its
	// capacity bounds how many chunks are in flight at once.
	jobs := make(chan *chunkJob)
	pending := make(chan *chunkJob, d.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				ecbDecrypt(cipher, job.data)
				close(job.done)
			}
		}()
	}

	var readErr error
	go func() {
		defer close(jobs)
		defer close(pending)
		for _, size := range chunkSizes(hdr.PayloadSize()) {
			if err := ctx.Err(); err != nil {
				readErr = err
				return
			}
			job := &chunkJob{data: make([]byte, size), done: make(chan struct{})}
			if _, err := io.ReadFull(in, job.data); err != nil {
				readErr = fmt.Errorf("read chunk: %w", err)
				return
			}
			pending <- job
			jobs <- job
		}
	}()

	// On a write error the writer keeps draining pending so the producer and
	// workers can run down instead of blocking on a full channel.
	sum := newChecksum()
	var writeErr error
	for job := range pending {
		<-job.done
		if writeErr != nil {
			continue
		}
		sum.Write(job.data)
		if _, err := out.Write(job.data); err != nil {
			writeErr = err
		}
	}
	wg.Wait()

	if writeErr != nil {
		return services.Wrap(services.ErrFilesystem, "decode", "write output", "", writeErr)
	}
	if readErr != nil {
		if errors.Is(readErr, context.Canceled) || errors.Is(readErr, context.DeadlineExceeded) {
			return readErr
		}
		return services.Wrap(services.ErrFormat, "decode", "read payload", "", readErr)
	}
	if err := out.Close(); err != nil {
		return services.Wrap(services.ErrFilesystem, "decode", "close output", "", err)
	}
	if !checksumMatches(sum, hdr.PlaintextHash) {
		return services.Wrap(services.ErrChecksumPost, "decode", "verify plaintext",
			"decoded payload does not match reference checksum (wrong credentials?)", nil)
	}
	return nil
}

// chunkSizes splits a payload into decryption chunks: full chunks of
// maxChunkSize, then the largest block-aligned remainder, then the trailing
// bytes shorter than one cipher block.
func chunkSizes(payloadSize int64) []int {
	var sizes []int
	full, remainder := payloadSize/maxChunkSize, payloadSize%maxChunkSize
	for i := int64(0); i < full; i++ {
		sizes = append(sizes, maxChunkSize)
	}
	if aligned := remainder / blockSize * blockSize; aligned > 0 {
		sizes = append(sizes, int(aligned))
	}
	if tail := remainder % blockSize; tail > 0 {
		sizes = append(sizes, int(tail))
	}
	return sizes
}
