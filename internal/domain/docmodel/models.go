package docmodel

// Element is one unit of raw extractor output: a fragment of text on a page,
// optionally accompanied by an HTML rendering of a table found at the same
// position. Extractors emit elements with non-decreasing page numbers.
type Element struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	TableHTML  string `json:"table_html,omitempty"`
}

// PageUnit is the merged, cleaned text of one physical page of one file.
// Immutable once produced by the page merger.
type PageUnit struct {
	FileName   string `json:"file_name"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	HasTable   bool   `json:"has_table"`
}

// TableRecord holds the raw table renderings found on one page. A session
// keeps at most one record per (file, page) pair.
type TableRecord struct {
	FileName   string   `json:"file_name"`
	PageNumber int      `json:"page_number"`
	TableHTML  []string `json:"table_html"`
}

// ChunkMetadata is the provenance carried by every chunk. All chunks cut
// from the same page share it.
type ChunkMetadata struct {
	FileName   string `json:"file_name"`
	PageNumber int    `json:"page_number"`
	HasTable   bool   `json:"has_table"`
}

// Chunk is the unit of embedding and retrieval: a bounded token window of
// cleaned page text plus its provenance.
type Chunk struct {
	ID       string        `json:"chunk_id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ScoredChunk is a chunk paired with a retrieval score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Artifact kinds produced by the external document-intelligence parser.
const (
	ArtifactLetterOfCredit = "letter_of_credit"
	ArtifactInvoice        = "invoice"
)
