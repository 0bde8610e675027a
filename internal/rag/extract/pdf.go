package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var pdfLogger = logging.NewLogger("PDF Extractor")

// PDFExtractor walks a PDF page by page and emits one text element per page.
// It has no table detection; TableHTML stays empty.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, path string) ([]docmodel.Element, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var elements []docmodel.Element
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectedExtract(page)
		if err != nil {
			// one unreadable page should not sink the whole document
			pdfLogger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		elements = append(elements, docmodel.Element{
			PageNumber: i,
			Text:       content,
		})
	}
	return elements, nil
}

// protectedExtract bounds GetPlainText, which can hang on malformed content
// streams.
func protectedExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("page extraction timeout")
	}
}
