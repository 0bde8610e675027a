package pagemerge

import (
	"reflect"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func TestMerge_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		elements   []docmodel.Element
		wantPages  []int
		wantTables int
	}{
		{
			name: "Single_Page_Is_Flushed",
			elements: []docmodel.Element{
				{PageNumber: 1, Text: "Invoice total"},
				{PageNumber: 1, Text: "USD 50,000"},
			},
			wantPages: []int{1},
		},
		{
			name: "Page_Change_Flushes_Buffer",
			elements: []docmodel.Element{
				{PageNumber: 1, Text: "first"},
				{PageNumber: 2, Text: "second"},
				{PageNumber: 2, Text: "still second"},
				{PageNumber: 4, Text: "fourth"},
			},
			wantPages: []int{1, 2, 4},
		},
		{
			name: "Tables_Recorded_Per_Page",
			elements: []docmodel.Element{
				{PageNumber: 1, Text: "plain text"},
				{PageNumber: 2, Text: "with table", TableHTML: "<table>a</table>"},
				{PageNumber: 2, Text: "more", TableHTML: "<table>b</table>"},
			},
			wantPages:  []int{1, 2},
			wantTables: 1,
		},
		{
			name:      "Empty_Stream",
			elements:  nil,
			wantPages: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, tables := Merge("doc.pdf", tt.elements)

			var gotPages []int
			for _, u := range units {
				gotPages = append(gotPages, u.PageNumber)
			}
			if !reflect.DeepEqual(gotPages, tt.wantPages) {
				t.Errorf("pages = %v, want %v", gotPages, tt.wantPages)
			}
			if len(tables) != tt.wantTables {
				t.Errorf("tables = %d, want %d", len(tables), tt.wantTables)
			}
		})
	}
}

func TestMerge_TableProvenance(t *testing.T) {
	elements := []docmodel.Element{
		{PageNumber: 3, Text: "shipment schedule", TableHTML: "<table>rows</table>"},
	}

	units, tables := Merge("lc.pdf", elements)

	if len(units) != 1 || !units[0].HasTable {
		t.Fatalf("expected one table-flagged unit, got %+v", units)
	}
	if len(tables) != 1 {
		t.Fatalf("expected one table record, got %d", len(tables))
	}
	rec := tables[0]
	if rec.FileName != "lc.pdf" || rec.PageNumber != 3 {
		t.Errorf("record provenance = (%s, %d), want (lc.pdf, 3)", rec.FileName, rec.PageNumber)
	}
	if len(rec.TableHTML) != 1 || rec.TableHTML[0] != "<table>rows</table>" {
		t.Errorf("table html not preserved: %v", rec.TableHTML)
	}
}

func TestClean_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Lowercases_And_Trims",
			input: "  Hello World  ",
			want:  "hello world",
		},
		{
			name:  "Pads_Punctuation",
			input: "usd50,000.00",
			want:  "usd50 , 000 . 00",
		},
		{
			name:  "Splits_Camel_Runs",
			input: "BeneficiaryName",
			want:  "beneficiary name",
		},
		{
			name:  "Removes_Brackets",
			input: "amount (net)",
			want:  "amount net",
		},
		{
			name:  "Collapses_Whitespace",
			input: "a\t b\n\n c",
			want:  "a b c",
		},
		{
			name:  "Strips_Replacement_Runes",
			input: "total� due",
			want:  "total due",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuery_MatchesCorpusTokens(t *testing.T) {
	query := "What is the Invoice total, in USD?"
	got := NormalizeQuery(query)
	want := "what is the invoice total , in usd ?"
	if got != want {
		t.Errorf("NormalizeQuery = %q, want %q", got, want)
	}
}
