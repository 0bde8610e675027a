// Package pagemerge folds the raw per-element extractor stream into one
// cleaned unit per physical page, recording table provenance separately so
// tables can be surfaced next to matching text at answer time without ever
// being embedded.
package pagemerge

import (
	"strings"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Merge groups elements into PageUnits and TableRecords. Elements arrive
// with non-decreasing page numbers (not necessarily contiguous); a change in
// page number flushes the running buffer. The final buffer is always
// flushed, including for single-page documents. An empty element stream
// yields two empty slices.
func Merge(fileName string, elements []docmodel.Element) ([]docmodel.PageUnit, []docmodel.TableRecord) {
	var (
		units  []docmodel.PageUnit
		tables []docmodel.TableRecord

		pageTexts  []string
		pageTables []string
		page       int
		buffering  bool
	)

	flush := func() {
		text := Clean(strings.Join(pageTexts, " "))
		units = append(units, docmodel.PageUnit{
			FileName:   fileName,
			PageNumber: page,
			Text:       text,
			HasTable:   len(pageTables) > 0,
		})
		if len(pageTables) > 0 {
			tables = append(tables, docmodel.TableRecord{
				FileName:   fileName,
				PageNumber: page,
				TableHTML:  append([]string(nil), pageTables...),
			})
		}
		pageTexts = pageTexts[:0]
		pageTables = pageTables[:0]
	}

	for _, el := range elements {
		if !buffering {
			page = el.PageNumber
			buffering = true
		} else if el.PageNumber != page {
			flush()
			page = el.PageNumber
		}
		pageTexts = append(pageTexts, el.Text)
		if el.TableHTML != "" {
			pageTables = append(pageTables, el.TableHTML)
		}
	}
	if buffering {
		flush()
	}

	return units, tables
}
