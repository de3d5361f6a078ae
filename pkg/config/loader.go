package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable.
// MIRAGE_SCAN_SKIP_HIDDEN sets scan.skip_hidden.
const EnvPrefix = "MIRAGE_"

// Source names for layers that are not files
const (
	SourceDefaults  = "defaults"
	SourceEnv       = "env"
	SourceOverrides = "flags"
)

// LoadOptions selects the layers Load reads.
type LoadOptions struct {
	// TargetDir is the tree whose .mirage.toml is read; empty skips it
	TargetDir string
	// UserConfigPath defaults to paths.UserConfigPath()
	UserConfigPath string
	// Overrides are applied last, keyed by dotted path ("scan.ignore")
	Overrides map[string]interface{}
}

// Default returns the built-in configuration.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("embedded defaults are not valid TOML: " + err.Error())
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic("embedded defaults do not decode: " + err.Error())
	}
	cfg.Sources = []string{SourceDefaults}
	return cfg
}

// Load builds the effective configuration.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")
	sources := []string{SourceDefaults}

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config, then 3. tree config
	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = paths.UserConfigPath()
	}
	files := []string{userPath}
	if opts.TargetDir != "" {
		files = append(files, paths.NewLayout(opts.TargetDir).TreeConfig())
	}
	for _, path := range files {
		loaded, err := loadFile(k, path)
		if err != nil {
			return nil, err
		}
		if loaded {
			logger.Debug().Str("path", path).Msg("Loaded config file")
			sources = append(sources, path)
		}
	}

	// 4. Environment
	envK := koanf.New(".")
	if err := envK.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}
	if len(envK.Keys()) > 0 {
		if err := k.Merge(envK); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to merge environment")
		}
		sources = append(sources, SourceEnv)
	}

	// 5. Command-line overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
		sources = append(sources, SourceOverrides)
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a TOML file when it exists.
func loadFile(k *koanf.Koanf, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat config file %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return false, errors.Newf(errors.ErrConfigLoad, "config file %s is a directory", path).
			WithDetail("path", path)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

// envKey maps MIRAGE_SECTION_SOME_KEY to section.some_key. Keys outside
// the known sections, such as MIRAGE_CONFIG_DIR, are dropped.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return ""
	}
	switch section {
	case "scan", "compare", "journal":
		return section + "." + rest
	}
	return ""
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	if cfg.Scan.Ignore == nil {
		cfg.Scan.Ignore = []string{}
	}
	return &cfg, nil
}
