package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/session"
)

// fakeIndex implements vectordb.Index
type fakeIndex struct {
	OnQuery func(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error)
}

func (f *fakeIndex) Upsert(ctx context.Context, sessionID string, chunks []docmodel.Chunk, vectors [][]float32) error {
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error) {
	if f.OnQuery != nil {
		return f.OnQuery(ctx, sessionID, fileName, vector, topK, minScore)
	}
	return nil, nil
}

func (f *fakeIndex) Drop(ctx context.Context, sessionID string) error { return nil }

func fileChunk(id, file, content string) docmodel.Chunk {
	return docmodel.Chunk{ID: id, Content: content, Metadata: docmodel.ChunkMetadata{FileName: file, PageNumber: 1}}
}

func TestRetrieve_EmptyScopeYieldsNothing(t *testing.T) {
	r := New(&fakeIndex{}, 6, 0.5, 0.5, 0.5)

	got, err := r.Retrieve(context.Background(), "s1", "question", []float32{0.1}, session.Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("context = %v, want none", got)
	}
}

func TestRetrieve_RespectsFilterScope(t *testing.T) {
	queried := map[string]bool{}
	index := &fakeIndex{
		OnQuery: func(_ context.Context, _, fileName string, _ []float32, _ uint64, _ float32) ([]docmodel.ScoredChunk, error) {
			queried[fileName] = true
			return nil, nil
		},
	}
	r := New(index, 6, 0.5, 0.5, 0.5)

	snap := session.Snapshot{
		FileNames: []string{"lc.pdf", "invoice.pdf", "packing.pdf"},
		Filter:    []string{"invoice.pdf"},
	}
	if _, err := r.Retrieve(context.Background(), "s1", "q", []float32{0.1}, snap); err != nil {
		t.Fatal(err)
	}

	if !queried["invoice.pdf"] || len(queried) != 1 {
		t.Errorf("queried files = %v, want only invoice.pdf", queried)
	}
}

func TestRetrieve_DenseErrorPropagates(t *testing.T) {
	boom := errors.New("qdrant down")
	index := &fakeIndex{
		OnQuery: func(context.Context, string, string, []float32, uint64, float32) ([]docmodel.ScoredChunk, error) {
			return nil, boom
		},
	}
	r := New(index, 6, 0.5, 0.5, 0.5)

	snap := session.Snapshot{FileNames: []string{"lc.pdf"}}
	if _, err := r.Retrieve(context.Background(), "s1", "q", []float32{0.1}, snap); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped qdrant error", err)
	}
}

func TestRetrieve_FusesDenseAndLexical(t *testing.T) {
	dense := fileChunk("dense1", "lc.pdf", "unrelated dense match")
	shared := fileChunk("shared", "lc.pdf", "payment amount usd")

	index := &fakeIndex{
		OnQuery: func(context.Context, string, string, []float32, uint64, float32) ([]docmodel.ScoredChunk, error) {
			return []docmodel.ScoredChunk{
				{Chunk: shared, Score: 0.9},
				{Chunk: dense, Score: 0.8},
			}, nil
		},
	}
	r := New(index, 6, 0.5, 0.5, 0.5)

	snap := session.Snapshot{
		FileNames: []string{"lc.pdf"},
		Chunks:    []docmodel.Chunk{shared, fileChunk("lex1", "lc.pdf", "irrelevant text")},
	}
	got, err := r.Retrieve(context.Background(), "s1", "payment amount usd", []float32{0.1}, snap)
	if err != nil {
		t.Fatal(err)
	}

	// "shared" ranks first in both lists, so fusion must keep it on top and
	// emit it exactly once.
	if len(got) != 2 {
		t.Fatalf("context = %d chunks, want 2", len(got))
	}
	if got[0].ID != "shared" {
		t.Errorf("top chunk = %s, want shared", got[0].ID)
	}
	seen := map[string]int{}
	for _, c := range got {
		seen[c.ID]++
	}
	if seen["shared"] != 1 {
		t.Errorf("shared chunk duplicated: %v", seen)
	}
}

func TestRetrieve_ScopeOrderIsPreserved(t *testing.T) {
	index := &fakeIndex{
		OnQuery: func(_ context.Context, _, fileName string, _ []float32, _ uint64, _ float32) ([]docmodel.ScoredChunk, error) {
			return []docmodel.ScoredChunk{{Chunk: fileChunk("d-"+fileName, fileName, "match"), Score: 0.9}}, nil
		},
	}
	r := New(index, 6, 0.5, 0.5, 0.5)

	snap := session.Snapshot{FileNames: []string{"b.pdf", "a.pdf"}}
	got, err := r.Retrieve(context.Background(), "s1", "q", []float32{0.1}, snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Metadata.FileName != "b.pdf" || got[1].Metadata.FileName != "a.pdf" {
		t.Errorf("per-file blocks out of scope order: %+v", got)
	}
}

func TestFuse_WeightsDecideTies(t *testing.T) {
	r := New(&fakeIndex{}, 6, 0.5, 0.9, 0.1)

	a := fileChunk("a", "f.pdf", "x")
	b := fileChunk("b", "f.pdf", "y")
	merged := r.fuse(
		[]docmodel.ScoredChunk{{Chunk: a, Score: 1}},
		[]docmodel.ScoredChunk{{Chunk: b, Score: 1}},
	)

	if len(merged) != 2 || merged[0].ID != "a" {
		t.Errorf("dense-weighted fusion should rank a first: %+v", merged)
	}
}
