package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvMirageConfigDir overrides the XDG config directory for mirage
	EnvMirageConfigDir = "MIRAGE_CONFIG_DIR"
)

// Side-store layout.
// IMPORTANT: These names define the on-disk format of a deduplicated tree.
// Changing them orphans the side-store of every tree mirage has touched.
const (
	// AppName is the directory name used under XDG base directories
	AppName = "mirage"

	// SideStoreName is the reserved name of the side-store directory.
	// Scanning skips every entry with this prefix.
	SideStoreName = ".mirage"

	// OriginalsDirName holds one canonical copy per equivalence class
	OriginalsDirName = "originals"

	// JournalFileName is the serialized journal
	JournalFileName = "wal.json"

	// TreeConfigFile is the optional per-tree configuration file
	TreeConfigFile = ".mirage.toml"

	// UserConfigFile is the name of the user configuration file
	UserConfigFile = "config.toml"
)

// Layout resolves side-store paths for one target directory.
// The target directory must already be absolute and symlink-resolved.
type Layout struct {
	targetDir string
}

// NewLayout creates a Layout rooted at targetDir.
func NewLayout(targetDir string) Layout {
	return Layout{targetDir: filepath.Clean(targetDir)}
}

// TargetDir returns the deduplicated tree root.
func (l Layout) TargetDir() string { return l.targetDir }

// SideStore returns the absolute path of .mirage/.
func (l Layout) SideStore() string {
	return filepath.Join(l.targetDir, SideStoreName)
}

// Originals returns the absolute path of .mirage/originals/.
func (l Layout) Originals() string {
	return filepath.Join(l.SideStore(), OriginalsDirName)
}

// Journal returns the absolute path of .mirage/wal.json.
func (l Layout) Journal() string {
	return filepath.Join(l.SideStore(), JournalFileName)
}

// TreeConfig returns the absolute path of the per-tree config file.
func (l Layout) TreeConfig() string {
	return filepath.Join(l.targetDir, TreeConfigFile)
}

// CanonicalPath returns where a canonical copy named name is stored.
func (l Layout) CanonicalPath(name string) string {
	return filepath.Join(l.Originals(), name)
}

// IsSideStoreName reports whether a directory entry name is reserved
// for mirage's own bookkeeping.
func IsSideStoreName(name string) bool {
	return strings.HasPrefix(name, SideStoreName)
}

// ConfigDir returns the directory holding the user configuration file.
func ConfigDir() string {
	if configDir := os.Getenv(EnvMirageConfigDir); configDir != "" {
		return expandHome(configDir)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UserConfigPath returns the absolute path of the user configuration file.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), UserConfigFile)
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
