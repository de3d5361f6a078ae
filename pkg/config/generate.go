package config

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/mirage/pkg/errors"
)

// Generate renders cfg as a TOML document that Load reads back into the
// same settings.
func Generate(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(data), nil
}
