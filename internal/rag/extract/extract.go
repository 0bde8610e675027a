// Package extract turns raw uploaded documents into the per-element stream
// the ingestion pipeline consumes. The page-element extractor is a pluggable
// collaborator; richer backends (layout-aware services that also emit table
// HTML) implement the same interface.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Extractor yields the ordered element stream for one document. Elements
// carry monotonically non-decreasing page numbers, but pages are not
// guaranteed contiguous or de-duplicated. An empty document yields an empty
// slice, not an error.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]docmodel.Element, error)
}

// ForFile picks an extractor by file extension.
func ForFile(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDFExtractor{}, nil
	case ".docx", ".txt", ".rtf", ".odt":
		return FlatExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}
