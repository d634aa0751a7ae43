// Package storage writes exported posts to disk.
//
// Each post becomes one Markdown file named after its sanitized title inside
// the output directory. Files are written to a temporary name first and then
// renamed, so an interrupted run never leaves a half-written post behind.
// Re-exporting a post overwrites its file.
//
// The HTML to Markdown step goes through the Converter interface; the default
// implementation uses github.com/JohannesKaufmann/html-to-markdown.
//
// Usage:
//
//	exporter := storage.NewExporter(nil, log)
//	path, err := exporter.Export("9adgq", post.Title, html)
package storage
