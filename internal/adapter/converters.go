// Package adapter converts between the service layer's domain results and
// the wire contracts in internal/api.
package adapter

import (
	"github.com/anmkhn/tradedoc-qa/internal/api"
	"github.com/anmkhn/tradedoc-qa/internal/rag"
)

func ToIngestResponse(summary rag.IngestSummary) api.IngestResponse {
	return api.IngestResponse{
		FileName: summary.FileName,
		Pages:    summary.Pages,
		Chunks:   summary.Chunks,
		Tables:   summary.Tables,
		Parsed:   summary.Parsed,
	}
}

func ToQueryResponse(question string, result rag.AnswerResult) api.QueryResponse {
	return api.QueryResponse{
		Question: question,
		Answer:   result.Answer,
		Sources:  result.Sources,
		NoData:   result.NoData,
		Cached:   result.Cached,
	}
}

func ToFilesResponse(listing rag.FileListing) api.FilesResponse {
	// Empty slices marshal as [] rather than null for frontend convenience.
	files := listing.Files
	if files == nil {
		files = []string{}
	}
	return api.FilesResponse{Files: files, Filter: listing.Filter}
}

func BadRequest(code int, message, detail string) api.ErrorResponse {
	return api.ErrorResponse{Code: code, Message: message, Detail: detail}
}
