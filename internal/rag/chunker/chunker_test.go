package chunker

import (
	"strings"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func tokens(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "tok"
	}
	return strings.Join(parts, " ")
}

func TestSplit_WindowsAndOverlap(t *testing.T) {
	c := New(10, 2)
	unit := docmodel.PageUnit{FileName: "doc.pdf", PageNumber: 1, Text: tokens(25)}

	chunks := c.Split([]docmodel.PageUnit{unit})

	// stride 8: windows [0,10) [8,18) [16,25)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if n := len(strings.Fields(chunks[0].Content)); n != 10 {
		t.Errorf("first window = %d tokens, want 10", n)
	}
	if n := len(strings.Fields(chunks[2].Content)); n != 9 {
		t.Errorf("final window = %d tokens, want 9", n)
	}
}

func TestSplit_ShortUnitIsOneChunk(t *testing.T) {
	c := New(300, 30)
	unit := docmodel.PageUnit{FileName: "doc.pdf", PageNumber: 2, Text: "short page text"}

	chunks := c.Split([]docmodel.PageUnit{unit})

	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "short page text" {
		t.Errorf("content = %q", chunks[0].Content)
	}
}

func TestSplit_MetadataCopiedPerChunk(t *testing.T) {
	c := New(5, 1)
	unit := docmodel.PageUnit{FileName: "inv.pdf", PageNumber: 7, HasTable: true, Text: tokens(12)}

	chunks := c.Split([]docmodel.PageUnit{unit})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	ids := map[string]bool{}
	for _, ch := range chunks {
		m := ch.Metadata
		if m.FileName != "inv.pdf" || m.PageNumber != 7 || !m.HasTable {
			t.Errorf("metadata = %+v", m)
		}
		if ch.ID == "" || ids[ch.ID] {
			t.Errorf("chunk ids must be unique and non-empty")
		}
		ids[ch.ID] = true
	}
}

func TestSplit_ChunksNeverCrossPages(t *testing.T) {
	c := New(10, 2)
	units := []docmodel.PageUnit{
		{FileName: "doc.pdf", PageNumber: 1, Text: tokens(15)},
		{FileName: "doc.pdf", PageNumber: 2, Text: tokens(15)},
	}

	for _, ch := range c.Split(units) {
		if ch.Metadata.PageNumber != 1 && ch.Metadata.PageNumber != 2 {
			t.Fatalf("unexpected page %d", ch.Metadata.PageNumber)
		}
		if n := len(strings.Fields(ch.Content)); n > 10 {
			t.Errorf("window of %d tokens exceeds target", n)
		}
	}
}

func TestSplit_EmptyUnitYieldsNothing(t *testing.T) {
	c := New(10, 2)
	chunks := c.Split([]docmodel.PageUnit{{FileName: "doc.pdf", PageNumber: 1, Text: "   "}})
	if len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	c := New(0, -5)
	if c.tokenTarget != DefaultTokenTarget || c.tokenOverlap != DefaultTokenOverlap {
		t.Errorf("defaults not applied: %+v", c)
	}
}
