package tables

import (
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func tableChunk(file string, page int, hasTable bool) docmodel.Chunk {
	return docmodel.Chunk{
		ID:       file + "-chunk",
		Content:  "text",
		Metadata: docmodel.ChunkMetadata{FileName: file, PageNumber: page, HasTable: hasTable},
	}
}

func TestCorrelate_MatchesByFileAndPage(t *testing.T) {
	records := []docmodel.TableRecord{
		{FileName: "inv.pdf", PageNumber: 2, TableHTML: []string{"<table>page2</table>"}},
		{FileName: "inv.pdf", PageNumber: 5, TableHTML: []string{"<table>page5</table>"}},
	}
	contextChunks := []docmodel.Chunk{
		tableChunk("inv.pdf", 2, true),
		tableChunk("inv.pdf", 7, true), // no record for page 7
	}

	got := Correlate(contextChunks, records)

	if len(got) != 1 {
		t.Fatalf("matched = %d, want 1", len(got))
	}
	if got[0].PageNumber != 2 || got[0].TableHTML[0] != "<table>page2</table>" {
		t.Errorf("matched = %+v", got[0])
	}
}

func TestCorrelate_IgnoresChunksWithoutTables(t *testing.T) {
	records := []docmodel.TableRecord{
		{FileName: "inv.pdf", PageNumber: 2, TableHTML: []string{"<table>x</table>"}},
	}
	contextChunks := []docmodel.Chunk{tableChunk("inv.pdf", 2, false)}

	if got := Correlate(contextChunks, records); len(got) != 0 {
		t.Errorf("matched = %v, want none", got)
	}
}

func TestCorrelate_DedupesRepeatedPages(t *testing.T) {
	records := []docmodel.TableRecord{
		{FileName: "inv.pdf", PageNumber: 2, TableHTML: []string{"<table>x</table>"}},
	}
	contextChunks := []docmodel.Chunk{
		tableChunk("inv.pdf", 2, true),
		tableChunk("inv.pdf", 2, true),
	}

	if got := Correlate(contextChunks, records); len(got) != 1 {
		t.Errorf("matched = %d, want 1", len(got))
	}
}

func TestCorrelate_OrderFollowsContext(t *testing.T) {
	records := []docmodel.TableRecord{
		{FileName: "a.pdf", PageNumber: 1, TableHTML: []string{"a"}},
		{FileName: "b.pdf", PageNumber: 3, TableHTML: []string{"b"}},
	}
	contextChunks := []docmodel.Chunk{
		tableChunk("b.pdf", 3, true),
		tableChunk("a.pdf", 1, true),
	}

	got := Correlate(contextChunks, records)
	if len(got) != 2 || got[0].FileName != "b.pdf" || got[1].FileName != "a.pdf" {
		t.Errorf("order = %+v, want context order", got)
	}
}

func TestCorrelate_EmptyInputs(t *testing.T) {
	if got := Correlate(nil, []docmodel.TableRecord{{FileName: "a.pdf"}}); got != nil {
		t.Errorf("nil chunks: %v", got)
	}
	if got := Correlate([]docmodel.Chunk{tableChunk("a.pdf", 1, true)}, nil); got != nil {
		t.Errorf("nil records: %v", got)
	}
}
