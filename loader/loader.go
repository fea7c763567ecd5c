// Package loader reads a corpus directory of policy documents (PDF, DOCX,
// XLSX, plain text) into the uniform Document representation used by the
// indexing pipeline.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"policyrag/types"
)

var (
	// ErrNoCorpus means the corpus directory is missing or holds no file
	// with a recognized extension.
	ErrNoCorpus = errors.New("no policy files found in corpus directory")

	// ErrNoDocuments means every candidate file failed extraction.
	ErrNoDocuments = errors.New("no documents could be loaded")
)

type Loader struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load extracts every recognized file under dir into a Document keyed by
// its file name. A single file failing extraction is skipped with a
// warning; only an empty or fully unreadable corpus is an error.
func (l *Loader) Load(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCorpus, dir)
	}

	var docs []types.Document
	candidates := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		extract, ok := extractors[ext]
		if !ok {
			continue
		}
		candidates++

		path := filepath.Join(dir, entry.Name())
		content, err := extract(path)
		if err != nil {
			l.logger.Warn("could not load file, skipping", "file", entry.Name(), "error", err)
			continue
		}
		docs = append(docs, types.Document{
			SourceID: entry.Name(),
			Content:  content,
		})
	}

	if candidates == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCorpus, dir)
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// extractors maps a file extension to its format-specific extraction.
var extractors = map[string]func(path string) (string, error){
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".doc":  extractDOCX,
	".xlsx": extractXLSX,
	".xls":  extractXLSX,
	".txt":  extractText,
	".md":   extractText,
}

// AllowedExtension reports whether the loader recognizes the extension of
// name. The upload handler uses it as its allow-list.
func AllowedExtension(name string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(name))]
	return ok
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
