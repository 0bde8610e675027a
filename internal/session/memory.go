package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/metrics"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

type memorySession struct {
	mu        sync.RWMutex
	fileNames []string
	filter    []string
	chunks    []docmodel.Chunk
	tables    []docmodel.TableRecord
	artifacts map[string]json.RawMessage
}

// Memory is the process-memory Store. Sessions live until Destroy or process
// exit; there is no TTL.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	logger   *logging.Logger
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*memorySession),
		logger:   logging.NewLogger("InMem SessionStore"),
	}
}

func (m *Memory) GetOrCreate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		m.sessions[id] = &memorySession{artifacts: make(map[string]json.RawMessage)}
		metrics.IncrementActiveSessions()
		m.logger.Info("Created session", "session", id)
	}
	return nil
}

func (m *Memory) session(id string) (*memorySession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Memory) AppendFiles(_ context.Context, id string, names ...string) error {
	s, ok := m.session(id)
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileNames = append(s.fileNames, names...)
	return nil
}

func (m *Memory) AppendChunks(_ context.Context, id string, chunks []docmodel.Chunk) error {
	s, ok := m.session(id)
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (m *Memory) AppendTables(_ context.Context, id string, tables []docmodel.TableRecord) error {
	s, ok := m.session(id)
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = appendUniqueTables(s.tables, tables)
	return nil
}

func (m *Memory) SetFilter(_ context.Context, id string, files []string) error {
	s, ok := m.session(id)
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validateFilter(s.fileNames, files); err != nil {
		return err
	}
	s.filter = append([]string(nil), files...)
	return nil
}

func (m *Memory) SaveArtifact(_ context.Context, id, kind string, payload json.RawMessage) error {
	s, ok := m.session(id)
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[kind] = append(json.RawMessage(nil), payload...)
	return nil
}

func (m *Memory) Artifacts(_ context.Context, id string) (map[string]json.RawMessage, error) {
	s, ok := m.session(id)
	if !ok {
		return nil, docmodel.ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(s.artifacts))
	for k, v := range s.artifacts {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (Snapshot, bool, error) {
	s, ok := m.session(id)
	if !ok {
		return Snapshot{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		FileNames: append([]string(nil), s.fileNames...),
		Filter:    append([]string(nil), s.filter...),
		Chunks:    append([]docmodel.Chunk(nil), s.chunks...),
		Tables:    append([]docmodel.TableRecord(nil), s.tables...),
	}, true, nil
}

func (m *Memory) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		metrics.DecrementActiveSessions()
		m.logger.Info("Destroyed session", "session", id)
	}
	return nil
}

// appendUniqueTables enforces the at-most-one-record-per-page invariant.
func appendUniqueTables(existing, incoming []docmodel.TableRecord) []docmodel.TableRecord {
	type key struct {
		file string
		page int
	}
	seen := make(map[key]struct{}, len(existing))
	for _, t := range existing {
		seen[key{t.FileName, t.PageNumber}] = struct{}{}
	}
	for _, t := range incoming {
		k := key{t.FileName, t.PageNumber}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		existing = append(existing, t)
	}
	return existing
}

func validateFilter(fileNames, filter []string) error {
	known := make(map[string]struct{}, len(fileNames))
	for _, f := range fileNames {
		known[f] = struct{}{}
	}
	for _, f := range filter {
		if _, ok := known[f]; !ok {
			return fmt.Errorf("%w: %q", docmodel.ErrUnknownFile, f)
		}
	}
	return nil
}
