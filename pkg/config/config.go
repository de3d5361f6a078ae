package config

import (
	"github.com/arthur-debert/mirage/pkg/compare"
	"github.com/arthur-debert/mirage/pkg/errors"
)

// Config is the effective mirage configuration.
type Config struct {
	Scan    Scan    `koanf:"scan" toml:"scan" json:"scan"`
	Compare Compare `koanf:"compare" toml:"compare" json:"compare"`
	Journal Journal `koanf:"journal" toml:"journal" json:"journal"`

	// Sources lists the files and layers that contributed, in load order
	Sources []string `koanf:"-" toml:"-" json:"sources"`
}

// Scan controls which files are candidates.
type Scan struct {
	SkipHidden bool     `koanf:"skip_hidden" toml:"skip_hidden" json:"skip_hidden"`
	Ignore     []string `koanf:"ignore" toml:"ignore" json:"ignore"`
}

// Compare controls content comparison.
type Compare struct {
	ChunkSize int    `koanf:"chunk_size" toml:"chunk_size" json:"chunk_size"`
	Digest    string `koanf:"digest" toml:"digest" json:"digest"`
}

// Journal controls how the journal is persisted.
type Journal struct {
	Fsync  bool `koanf:"fsync" toml:"fsync" json:"fsync"`
	Indent bool `koanf:"indent" toml:"indent" json:"indent"`
}

// Validate rejects settings no component can honor.
func (c *Config) Validate() error {
	if c.Compare.ChunkSize <= 0 {
		return errors.Newf(errors.ErrConfigParse, "compare.chunk_size must be positive, got %d", c.Compare.ChunkSize).
			WithDetail("key", "compare.chunk_size")
	}
	switch c.Compare.Digest {
	case compare.DigestXXHash, compare.DigestSHA256:
	default:
		return errors.Newf(errors.ErrConfigParse, "compare.digest must be %q or %q, got %q",
			compare.DigestXXHash, compare.DigestSHA256, c.Compare.Digest).
			WithDetail("key", "compare.digest")
	}
	return nil
}
