package extract

import (
	"context"
	"fmt"

	"github.com/lu4p/cat"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// FlatExtractor reads .docx, .txt, .rtf and .odt files. These formats carry
// no page information, so the whole body lands on page 1.
type FlatExtractor struct{}

func (FlatExtractor) Extract(_ context.Context, path string) ([]docmodel.Element, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []docmodel.Element{{PageNumber: 1, Text: text}}, nil
}
