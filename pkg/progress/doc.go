// Package progress records which posts have already been exported.
//
// The progress file holds one post identifier per line. It is read once at
// the start of a run and only ever appended to afterwards, so an interrupted
// run loses at most the identifiers that had not been flushed yet. Load
// collapses duplicate lines, which can appear when a post is exported again
// after a reset.
package progress
