// Package config handles configuration management for mirage.
// It layers embedded defaults, the user configuration file, the per-tree
// .mirage.toml file, MIRAGE_* environment variables and command-line
// overrides, in that order.
package config
