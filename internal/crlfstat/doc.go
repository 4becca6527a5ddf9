// Package crlfstat audits line-ending and indentation consistency of source trees.
//
// It walks directory trees using fastwalk for parallel traversal, streams
// each file through a fixed-size buffer to decide binary vs text, which line
// endings (LF, CRLF) occur and which indentation (space, tab) lines start
// with, and aggregates the verdicts into per-run counters and extension sets.
package crlfstat
