// Package testutil provides fixtures for testing mirage components.
//
// Key components:
//   - NewTree / Snapshot: build a real directory tree in t.TempDir() and
//     capture what a user would see in it
//   - NewTestFS: in-memory filesystem for components that do not need
//     real symlinks
//   - FaultyFS: a types.FS wrapper that fails chosen operations, for
//     crash and error-path tests
package testutil
