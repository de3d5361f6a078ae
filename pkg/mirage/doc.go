// Package mirage is the entry point of the dedup engine.
//
// Apply replaces content-identical files in a directory tree with
// symlinks to a single canonical copy kept in the tree's .mirage side
// store. Revert undoes it. Status reports what a tree's journal holds.
//
// Every operation loads its own session from disk, so an interrupted
// Apply or Revert is completed by running the same operation again.
package mirage
