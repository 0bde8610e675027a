package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func TestBuildAnswerPrompt_IncludesProvenance(t *testing.T) {
	chunks := []docmodel.Chunk{
		{Content: "lc number 123", Metadata: docmodel.ChunkMetadata{FileName: "lc.pdf", PageNumber: 1}},
	}
	tables := []docmodel.TableRecord{
		{FileName: "lc.pdf", PageNumber: 2, TableHTML: []string{"<table>rows</table>"}},
	}

	prompt := BuildAnswerPrompt("what is the lc number?", chunks, tables, "cite the page")

	for _, want := range []string{
		"[lc.pdf p.1] lc number 123",
		"[lc.pdf p.2]",
		"<table>rows</table>",
		"cite the page",
		"User Question: what is the lc number?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildAnswerPrompt_OmitsEmptySections(t *testing.T) {
	prompt := BuildAnswerPrompt("q", nil, nil, "")

	if strings.Contains(prompt, "Reference tables") {
		t.Error("tables section rendered with no tables")
	}
	if strings.Contains(prompt, "guidelines") {
		t.Error("guidelines section rendered with no guidelines")
	}
}

func TestBuildComparePrompt(t *testing.T) {
	prompt := BuildComparePrompt(json.RawMessage(`{"lc":1}`), json.RawMessage(`{"inv":2}`))

	if !strings.Contains(prompt, `{"lc":1}`) || !strings.Contains(prompt, `{"inv":2}`) {
		t.Errorf("prompt = %q", prompt)
	}
}
