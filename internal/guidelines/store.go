// Package guidelines holds the operator-supplied answering guidelines that
// are appended to every answer prompt. The store is process-global and
// survives session teardown.
package guidelines

import (
	"context"
	"strings"
	"sync"

	"github.com/anmkhn/tradedoc-qa/internal/rag/extract"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

type Store struct {
	mu     sync.RWMutex
	text   string
	logger *logging.Logger
}

func NewStore() *Store {
	return &Store{logger: logging.NewLogger("guidelines")}
}

// AppendText adds a block of guideline text, separated from any existing
// guidelines by a blank line.
func (s *Store) AppendText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text != "" {
		s.text += "\n\n"
	}
	s.text += text
}

// AppendFile extracts the document at path and appends its text.
func (s *Store) AppendFile(ctx context.Context, path string) error {
	extractor, err := extract.ForFile(path)
	if err != nil {
		return err
	}
	elements, err := extractor.Extract(ctx, path)
	if err != nil {
		return err
	}
	var parts []string
	for _, el := range elements {
		if t := strings.TrimSpace(el.Text); t != "" {
			parts = append(parts, t)
		}
	}
	s.AppendText(strings.Join(parts, "\n"))
	s.logger.Info("guidelines file ingested", "path", path)
	return nil
}

// Get returns the current guideline text, empty when none were set.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Clear discards all guidelines.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = ""
}
