// Package session holds the per-session state of the service: which files a
// session has ingested, the optional retrieval filter, the chunks backing
// lexical ranking, the extracted table records, and the opaque parser
// artifacts. Two implementations exist, an in-memory map and a Redis-backed
// store, selected at startup the same way the job stores were in earlier
// iterations of this service.
package session

import (
	"context"
	"encoding/json"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Snapshot is a consistent read of one session's retrieval state. Queries
// operate on a snapshot so an in-flight ingestion cannot hand them a
// half-updated table list.
type Snapshot struct {
	FileNames []string
	Filter    []string
	Chunks    []docmodel.Chunk
	Tables    []docmodel.TableRecord
}

// Scope resolves the active file scope: the filter when set and non-empty,
// otherwise every ingested file.
func (s Snapshot) Scope() []string {
	if len(s.Filter) > 0 {
		return s.Filter
	}
	return s.FileNames
}

// Store is the session-keyed state container. Mutations are append/replace
// at session granularity; there is no cross-session sharing. Implementations
// must be safe for concurrent use, but callers serialize ingestion for a
// single session with a KeyedMutex; read-modify-write across AppendChunks and
// AppendFiles is not safe under interleaving otherwise.
type Store interface {
	// GetOrCreate ensures state exists for the session id.
	GetOrCreate(ctx context.Context, id string) error

	// AppendFiles appends file names to the session's ordered file list.
	AppendFiles(ctx context.Context, id string, names ...string) error

	// AppendChunks appends embedded chunks. Kept alongside the vector index
	// because lexical ranking is rebuilt from raw chunks on every query.
	AppendChunks(ctx context.Context, id string, chunks []docmodel.Chunk) error

	// AppendTables appends table records, discarding any record whose
	// (file, page) pair is already present for the session.
	AppendTables(ctx context.Context, id string, tables []docmodel.TableRecord) error

	// SetFilter replaces the session's file filter. Every entry must be an
	// ingested file name, otherwise docmodel.ErrUnknownFile is returned and
	// the existing filter is left unchanged. An empty filter clears the
	// restriction.
	SetFilter(ctx context.Context, id string, files []string) error

	// SaveArtifact stores an opaque parser result under its kind.
	SaveArtifact(ctx context.Context, id, kind string, payload json.RawMessage) error

	// Artifacts returns the parser results stored for the session.
	Artifacts(ctx context.Context, id string) (map[string]json.RawMessage, error)

	// Get returns a snapshot of the session, or found=false when absent.
	Get(ctx context.Context, id string) (Snapshot, bool, error)

	// Destroy removes all state owned by the session. Idempotent.
	Destroy(ctx context.Context, id string) error
}
