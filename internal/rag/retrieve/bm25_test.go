package retrieve

import (
	"reflect"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func chunk(id, content string) docmodel.Chunk {
	return docmodel.Chunk{ID: id, Content: content, Metadata: docmodel.ChunkMetadata{FileName: "doc.pdf", PageNumber: 1}}
}

func TestBM25_RanksMatchingChunkFirst(t *testing.T) {
	ranker := newBM25Ranker([]docmodel.Chunk{
		chunk("c1", "the shipment leaves the port of rotterdam"),
		chunk("c2", "invoice amount payable in usd"),
		chunk("c3", "beneficiary bank details and swift code"),
	})

	results := ranker.rank("invoice amount usd", 10)

	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Chunk.ID != "c2" {
		t.Errorf("top result = %s, want c2", results[0].Chunk.ID)
	}
	for _, r := range results {
		if r.Score <= 0 {
			t.Errorf("non-positive score for %s", r.Chunk.ID)
		}
	}
}

func TestBM25_NoMatchesYieldsNothing(t *testing.T) {
	ranker := newBM25Ranker([]docmodel.Chunk{
		chunk("c1", "port of rotterdam"),
	})

	if got := ranker.rank("quantum entanglement", 10); len(got) != 0 {
		t.Errorf("results = %v, want none", got)
	}
}

func TestBM25_TopKCapsResults(t *testing.T) {
	ranker := newBM25Ranker([]docmodel.Chunk{
		chunk("c1", "amount one"),
		chunk("c2", "amount two"),
		chunk("c3", "amount three"),
	})

	if got := ranker.rank("amount", 2); len(got) != 2 {
		t.Errorf("results = %d, want 2", len(got))
	}
}

func TestBM25_EmptyInputs(t *testing.T) {
	if got := newBM25Ranker(nil).rank("anything", 5); got != nil {
		t.Errorf("empty corpus: %v", got)
	}
	ranker := newBM25Ranker([]docmodel.Chunk{chunk("c1", "text")})
	if got := ranker.rank("", 5); got != nil {
		t.Errorf("empty query: %v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Payment of USD 50,000 isn't due")
	want := []string{"payment", "of", "usd", "50", "000", "isn't", "due"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %v, want %v", got, want)
	}
}
