package llm

import (
	"context"
	"encoding/json"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Provider generates the final answer from the retrieved context. Retrieval
// never depends on which provider is wired in.
type Provider interface {
	// Answer maps (question, context, tables, guidelines) to an answer
	// string. Guidelines may be empty.
	Answer(ctx context.Context, question string, contextChunks []docmodel.Chunk, tables []docmodel.TableRecord, guidelines string) (string, error)

	// Compare checks an invoice's parsed fields against a letter of credit's.
	Compare(ctx context.Context, letterOfCredit, invoice json.RawMessage) (string, error)
}
