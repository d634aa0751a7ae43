package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"afdscraper/pkg/logger"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// FileExtension is appended to every exported post
const FileExtension = ".md"

var filenameReplacer = strings.NewReplacer(
	"\\", "",
	"/", "",
	"?", "",
	"\n", "",
	"\b", "",
	"\f", "",
	"\r", "",
	"\t", "",
	"*", "x",
	"<", "《",
	">", "》",
	"|", "_",
)

// SanitizeFilename makes a post title usable as a file name
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

// Converter turns post HTML into the exported text format
type Converter interface {
	Convert(html string) (string, error)
}

// MarkdownConverter converts HTML to Markdown
type MarkdownConverter struct {
	conv *md.Converter
}

// NewMarkdownConverter creates a converter with the default Markdown rules
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{conv: md.NewConverter("", true, nil)}
}

// Convert implements Converter
func (m *MarkdownConverter) Convert(html string) (string, error) {
	return m.conv.ConvertString(html)
}

// Exporter writes converted posts into an output directory
type Exporter struct {
	converter Converter
	logger    logger.Logger
}

// NewExporter creates an exporter. A nil converter selects Markdown.
func NewExporter(converter Converter, log logger.Logger) *Exporter {
	if converter == nil {
		converter = NewMarkdownConverter()
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{converter: converter, logger: log}
}

// Export converts html and writes it to dirName/<sanitized filename>.md,
// replacing any existing file. dirName is created if missing, but its parent
// must already exist. It returns the absolute path of the written file.
func (e *Exporter) Export(dirName, filename, html string) (string, error) {
	if err := ensureDir(dirName); err != nil {
		return "", err
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("file name %q is empty after sanitizing", filename)
	}

	content, err := e.converter.Convert(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert %q: %w", filename, err)
	}

	path, err := filepath.Abs(filepath.Join(dirName, name+FileExtension))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", err
	}

	e.logger.DebugWithFields("File written", map[string]interface{}{
		"path":  path,
		"bytes": len(content),
	})
	return path, nil
}

func ensureDir(dirName string) error {
	info, err := os.Stat(dirName)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("output path %s exists and is not a directory", dirName)
		}
		return nil
	case os.IsNotExist(err):
		if err := os.Mkdir(dirName, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to stat output directory: %w", err)
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
