// Package types defines the interfaces shared across mirage packages,
// most importantly the FS abstraction every component performs its
// filesystem work through.
package types
