// Package planner finds content-equal files and records, in the journal,
// the actions that replace them with symlinks to one canonical copy.
//
// Planning is conceptually an all-pairs comparison. For every ordered pair
// (here, there) of distinct candidates with identical content:
//
//  1. both already redirected: nothing to do
//  2. only here redirected to P: symlink there to P
//  3. only there redirected to P: symlink here to P
//  4. neither redirected: copy here to a fresh canonical path P in the
//     originals directory, then symlink both to P
//
// The journal is committed after every mutation, so an interrupted plan
// resumes where it stopped.
//
// Instead of comparing every pair, candidates are grouped by size, then
// by content digest, then split into exact equivalence classes with a
// full byte comparison. Iterating here over candidates in scan order and
// there over the members of here's class in scan order produces the same
// action sequence as the all-pairs loop, reading every file a bounded
// number of times.
package planner
