// Package compare decides whether two regular files hold byte-identical
// content, and computes the content digests the planner indexes files by.
package compare

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/cespare/xxhash/v2"
)

// DefaultChunkSize is the comparison buffer size.
const DefaultChunkSize = 64 * 1024

// Digest algorithms
const (
	DigestXXHash = "xxhash"
	DigestSHA256 = "sha256"
)

// Options configures a Comparator.
type Options struct {
	// FS defaults to the OS filesystem
	FS types.FS
	// ChunkSize defaults to DefaultChunkSize
	ChunkSize int
	// Digest is DigestXXHash (default) or DigestSHA256
	Digest string
}

// Comparator compares files by content.
type Comparator struct {
	fs        types.FS
	chunkSize int
	digest    string
}

// New creates a Comparator.
func New(opts Options) (*Comparator, error) {
	c := &Comparator{
		fs:        opts.FS,
		chunkSize: opts.ChunkSize,
		digest:    opts.Digest,
	}
	if c.fs == nil {
		c.fs = filesystem.NewOS()
	}
	if c.chunkSize <= 0 {
		c.chunkSize = DefaultChunkSize
	}
	if c.digest == "" {
		c.digest = DigestXXHash
	}
	if _, err := c.newHash(); err != nil {
		return nil, err
	}
	return c, nil
}

// Same reports whether a and b have identical byte sequences.
func (c *Comparator) Same(a, b string) (bool, error) {
	match, err := c.SizesMatch(a, b)
	if err != nil || !match {
		return false, err
	}
	return c.FullMatch(a, b)
}

// SizesMatch reports whether a and b have the same length. Files of
// different length are never equal.
func (c *Comparator) SizesMatch(a, b string) (bool, error) {
	infoA, err := c.fs.Stat(a)
	if err != nil {
		return false, errors.IOf(err, a, "failed to stat %s", a)
	}
	infoB, err := c.fs.Stat(b)
	if err != nil {
		return false, errors.IOf(err, b, "failed to stat %s", b)
	}
	return infoA.Size() == infoB.Size(), nil
}

// FullMatch streams both files chunk by chunk. Each chunk is filled
// completely before comparing, so short reads cannot cause a mismatch.
func (c *Comparator) FullMatch(a, b string) (bool, error) {
	fa, err := c.fs.Open(a)
	if err != nil {
		return false, errors.IOf(err, a, "failed to open %s", a)
	}
	defer func() { _ = fa.Close() }()

	fb, err := c.fs.Open(b)
	if err != nil {
		return false, errors.IOf(err, b, "failed to open %s", b)
	}
	defer func() { _ = fb.Close() }()

	bufA := make([]byte, c.chunkSize)
	bufB := make([]byte, c.chunkSize)

	for {
		nA, doneA, err := fill(fa, bufA)
		if err != nil {
			return false, errors.IOf(err, a, "failed to read %s", a)
		}
		nB, doneB, err := fill(fb, bufB)
		if err != nil {
			return false, errors.IOf(err, b, "failed to read %s", b)
		}

		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}
		if doneA || doneB {
			return doneA == doneB, nil
		}
	}
}

// Digest returns "<algorithm>:<hex>" for the content of path.
func (c *Comparator) Digest(path string) (string, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return "", errors.IOf(err, path, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	h, err := c.newHash()
	if err != nil {
		return "", err
	}
	buf := make([]byte, c.chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", errors.IOf(err, path, "failed to read %s", path)
	}

	return fmt.Sprintf("%s:%x", c.digest, h.Sum(nil)), nil
}

func (c *Comparator) newHash() (hash.Hash, error) {
	switch c.digest {
	case DigestXXHash:
		return xxhash.New(), nil
	case DigestSHA256:
		return sha256.New(), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown digest %q", c.digest).
			WithDetail("digest", c.digest)
	}
}

// fill reads until buf is full or the input ends. done reports end of
// input.
func fill(r io.Reader, buf []byte) (n int, done bool, err error) {
	n, err = io.ReadFull(r, buf)
	switch err {
	case nil:
		return n, false, nil
	case io.EOF, io.ErrUnexpectedEOF:
		return n, true, nil
	default:
		return n, false, err
	}
}
