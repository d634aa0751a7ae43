// Package logger provides the structured logging interface used across the
// afdian exporter.
//
// It wraps zerolog. Console output is colourised and written to stderr so
// that it does not interleave with the per-file progress lines on stdout.
// When a log file is configured every event is also written there as JSON;
// the file is truncated at startup unless append mode is enabled.
//
// Basic usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	defer logger.Close()
//
//	log := logger.GetLogger().WithField("component", "catalog")
//	log.InfoWithFields("Catalog fetched", map[string]interface{}{
//	    "album_id": albumID,
//	    "posts":    len(posts),
//	})
//
// Components accept a Logger in their constructors; tests pass
// NewTestLogger to assert on captured messages or NewNopLogger to discard
// them.
package logger
