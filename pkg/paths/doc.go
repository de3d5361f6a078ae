// Package paths provides centralized path handling for mirage.
//
// It owns two concerns: the fixed layout of the side-store inside a
// deduplicated tree (.mirage/, .mirage/originals/, .mirage/wal.json)
// and the XDG location of the user configuration file.
package paths
