package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/anmkhn/tradedoc-qa/internal/adapter"
	"github.com/anmkhn/tradedoc-qa/internal/api"
	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/guidelines"
	"github.com/anmkhn/tradedoc-qa/internal/rag"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var (
	ragService     rag.Service
	guidelineStore *guidelines.Store
	once           sync.Once
	logRH          *logging.Logger
)

// InitHandlers wires the service into the package. Must run before the
// routes are registered.
func InitHandlers(service rag.Service, guide *guidelines.Store) {
	once.Do(func() {
		ragService = service
		guidelineStore = guide
		logRH = logging.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// PostIngestHandler handles the uploading of trade documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, runs the extraction and indexing pipeline, and records the file against the session.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Session-Id  header    string  true   "Session identifier"
// @Param        document      formData  file    true   "The PDF, DOCX or TXT file to upload"
// @Param        artifact_kind formData  string  false  "letter_of_credit or invoice, to also run structured parsing"
// @Success      200  {object}  api.IngestResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse "Document could not be processed"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString, "")
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request", "")
		return
	}

	artifactKind := r.FormValue("artifact_kind")
	if artifactKind != "" && artifactKind != docmodel.ArtifactLetterOfCredit && artifactKind != docmodel.ArtifactInvoice {
		WriteErrorResponse(w, http.StatusBadRequest, "Unknown artifact_kind", artifactKind)
		return
	}

	// One file per call. Multi-file batches are rejected outright instead of
	// quietly ingesting the first part.
	uploads := r.MultipartForm.File["document"]
	if len(uploads) != 1 {
		WriteErrorResponse(w, http.StatusBadRequest, "Exactly one document per request", fmt.Sprintf("received %d", len(uploads)))
		return
	}
	fileMetadata := uploads[0]

	tempFilePath, err := saveUpload(targetDir, fileMetadata)
	if err != nil {
		logRH.Error("Could not store upload", "file", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error", "")
		return
	}
	defer os.Remove(tempFilePath)

	summary, err := ragService.Ingest(r.Context(), sid, fileMetadata.Filename, tempFilePath, artifactKind)
	if err != nil {
		logRH.Error("Ingestion failed", "file", fileMetadata.Filename, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(summary))
}

// PostQueryHandler godoc
// @Summary      Ask a question against the session's documents
// @Description  Retrieves context within the session's file scope and generates an answer. Returns the no-data sentinel when the scope is empty.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        X-Session-Id  header  string           true  "Session identifier"
// @Param        request       body    api.QueryRequest true  "The question"
// @Success      200  {object}  api.QueryResponse
// @Failure      400  {object}  api.ErrorResponse
// @Router       /query [post]
func PostQueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var requestData api.QueryRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "question is required", "")
		return
	}

	result, err := ragService.Answer(r.Context(), sid, requestData.Question)
	if err != nil {
		logRH.Error("Query failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(requestData.Question, result))
}

// GetFilesHandler godoc
// @Summary      List the session's ingested files
// @Tags         Files
// @Produce      json
// @Param        X-Session-Id  header  string  true  "Session identifier"
// @Success      200  {object}  api.FilesResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /files [get]
func GetFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	listing, err := ragService.Files(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToFilesResponse(listing))
}

// PostFilterHandler godoc
// @Summary      Restrict retrieval to a subset of the session's files
// @Description  Replaces the session's file filter. An empty list clears the restriction. Every named file must already be ingested.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Param        X-Session-Id  header  string            true  "Session identifier"
// @Param        request       body    api.FilterRequest true  "The file names to scope retrieval to"
// @Success      200  {object}  api.StatusResponse
// @Failure      400  {object}  api.ErrorResponse "A named file was never ingested"
// @Router       /files/filter [post]
func PostFilterHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var requestData api.FilterRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request", "")
		return
	}

	if err := ragService.SetFileFilter(r.Context(), sid, requestData.Files); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// PostCompareHandler godoc
// @Summary      Compare the session's letter of credit against its invoice
// @Description  Runs a field-by-field comparison of the two parsed artifacts. Both must have been ingested with their artifact_kind set.
// @Tags         Comparison
// @Produce      json
// @Param        X-Session-Id  header  string  true  "Session identifier"
// @Success      200  {object}  api.CompareResponse
// @Failure      409  {object}  api.ErrorResponse "One or both artifacts missing"
// @Router       /compare [post]
func PostCompareHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	report, err := ragService.Compare(r.Context(), sid)
	if err != nil {
		logRH.Error("Comparison failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.CompareResponse{Report: report})
}

// PostTeardownHandler godoc
// @Summary      Destroy all session state
// @Description  Drops the session's vectors and store entries. Safe to call for a session that never existed.
// @Tags         Session
// @Produce      json
// @Param        X-Session-Id  header  string  true  "Session identifier"
// @Success      200  {object}  api.StatusResponse
// @Router       /session/teardown [post]
func PostTeardownHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := ragService.Teardown(r.Context(), sid); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// PostGuidelinesHandler godoc
// @Summary      Add answering guidelines
// @Description  Appends guideline text from a JSON body, or extracts and appends an uploaded guideline document when the body is multipart/form-data. Guidelines apply to every session.
// @Tags         Guidelines
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request   body      api.GuidelinesRequest  false  "Guideline text"
// @Param        document  formData  file                   false  "A guideline document (PDF, DOCX, TXT, RTF)"
// @Success      200  {object}  api.StatusResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      422  {object}  api.ErrorResponse "Guideline document could not be processed"
// @Router       /guidelines [post]
func PostGuidelinesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		appendGuidelineFile(w, r)
		return
	}

	var requestData api.GuidelinesRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Text) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "text is required", "")
		return
	}

	guidelineStore.AppendText(requestData.Text)
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

func appendGuidelineFile(w http.ResponseWriter, r *http.Request) {
	targetDir, errString := getTargetDirectory()
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, errString, "")
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request", "")
		return
	}

	uploads := r.MultipartForm.File["document"]
	if len(uploads) != 1 {
		WriteErrorResponse(w, http.StatusBadRequest, "Exactly one document per request", fmt.Sprintf("received %d", len(uploads)))
		return
	}
	fileMetadata := uploads[0]

	tempFilePath, err := saveUpload(targetDir, fileMetadata)
	if err != nil {
		logRH.Error("Could not store upload", "file", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error", "")
		return
	}
	defer os.Remove(tempFilePath)

	if err := guidelineStore.AppendFile(r.Context(), tempFilePath); err != nil {
		logRH.Error("Guideline extraction failed", "file", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, http.StatusUnprocessableEntity, "Guideline document could not be processed", err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// ClearGuidelinesHandler godoc
// @Summary      Clear all answering guidelines
// @Tags         Guidelines
// @Produce      json
// @Success      200  {object}  api.StatusResponse
// @Router       /guidelines/clear [post]
func ClearGuidelinesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	guidelineStore.Clear()
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}
