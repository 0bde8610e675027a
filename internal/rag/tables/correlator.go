// Package tables resolves retrieved text chunks back to the table records
// extracted from the same file and page. Tables are never embedded; this
// correlation is how they reach the answer prompt.
package tables

import (
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

type pageKey struct {
	fileName   string
	pageNumber int
}

// Correlate returns the session table records matching the table-flagged
// chunks in the context, at most one per distinct (file, page) pair, in the
// order pairs first appear in the context. Lookups go through an index built
// once per call; pairs with no matching record are silently skipped, since a
// missing table means "no table for this page", not an error.
func Correlate(contextChunks []docmodel.Chunk, sessionTables []docmodel.TableRecord) []docmodel.TableRecord {
	if len(contextChunks) == 0 || len(sessionTables) == 0 {
		return nil
	}

	index := make(map[pageKey]docmodel.TableRecord, len(sessionTables))
	for _, t := range sessionTables {
		index[pageKey{t.FileName, t.PageNumber}] = t
	}

	var matched []docmodel.TableRecord
	seen := make(map[pageKey]struct{})
	for _, chunk := range contextChunks {
		if !chunk.Metadata.HasTable {
			continue
		}
		k := pageKey{chunk.Metadata.FileName, chunk.Metadata.PageNumber}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if record, ok := index[k]; ok {
			matched = append(matched, record)
		}
	}
	return matched
}
