package docmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFile is returned when a caller names a file that was never
	// ingested into the session.
	ErrUnknownFile = errors.New("file not ingested for this session")

	// ErrSessionNotFound is returned for operations on a session id with no
	// state.
	ErrSessionNotFound = errors.New("session not found")

	// ErrArtifactsMissing is returned by document comparison when either the
	// letter-of-credit or the invoice artifact has not been processed yet.
	ErrArtifactsMissing = errors.New("both letter of credit and invoice must be processed before comparison")
)

// ExtractionError means upstream document parsing failed; the file is not
// added to the session.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %q: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding collaborator failed; the upsert for the
// batch is aborted and the file is not recorded against the session.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// AnswerError means answer generation failed after retrieval. The retrieved
// context is not discarded, so the caller may retry without re-retrieving.
type AnswerError struct {
	Err error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *AnswerError) Unwrap() error { return e.Err }
