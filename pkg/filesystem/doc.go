// Package filesystem provides filesystem implementations for mirage.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used in production and an afero-backed one used
// by tests that do not depend on real symlinks.
package filesystem
