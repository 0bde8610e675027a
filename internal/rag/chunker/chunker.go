// Package chunker splits merged page units into overlapping token windows
// sized for the embedding model. Chunks never cross a page boundary, so the
// page number and table flag on a chunk always describe exactly one source
// page.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

const (
	// DefaultTokenTarget is the window size in whitespace tokens. Cleaned
	// page text is space-normalized, so fields and tokens coincide.
	DefaultTokenTarget = 300
	// DefaultTokenOverlap is how many tokens consecutive windows share.
	DefaultTokenOverlap = 30
)

type Chunker struct {
	tokenTarget  int
	tokenOverlap int
}

func New(tokenTarget, tokenOverlap int) *Chunker {
	if tokenTarget <= 0 {
		tokenTarget = DefaultTokenTarget
	}
	if tokenOverlap < 0 || tokenOverlap >= tokenTarget {
		tokenOverlap = DefaultTokenOverlap
	}
	return &Chunker{tokenTarget: tokenTarget, tokenOverlap: tokenOverlap}
}

// Split chunks every page unit independently, copying the unit's provenance
// onto each resulting chunk. The final window of a unit may be shorter than
// the target; a unit with no tokens yields no chunks.
func (c *Chunker) Split(units []docmodel.PageUnit) []docmodel.Chunk {
	var chunks []docmodel.Chunk
	for _, unit := range units {
		chunks = append(chunks, c.splitUnit(unit)...)
	}
	return chunks
}

func (c *Chunker) splitUnit(unit docmodel.PageUnit) []docmodel.Chunk {
	tokens := strings.Fields(unit.Text)
	if len(tokens) == 0 {
		return nil
	}

	meta := docmodel.ChunkMetadata{
		FileName:   unit.FileName,
		PageNumber: unit.PageNumber,
		HasTable:   unit.HasTable,
	}

	stride := c.tokenTarget - c.tokenOverlap
	var chunks []docmodel.Chunk
	for start := 0; ; start += stride {
		end := start + c.tokenTarget
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, docmodel.Chunk{
			ID:       uuid.New().String(),
			Content:  strings.Join(tokens[start:end], " "),
			Metadata: meta,
		})
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
