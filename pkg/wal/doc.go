// Package wal owns mirage's write-ahead journal and the side-store that
// holds it.
//
// A Journal is the whole durable state of one deduplicated tree: the
// ordered list of planned filesystem actions, the redirection map from
// original paths to canonical copies, and the checkpoint separating
// applied actions from pending ones. The Store creates the side-store
// layout, decodes the journal into a Session and replaces the on-disk
// record atomically on every Commit, so a crash loses at most the step
// in flight.
package wal
