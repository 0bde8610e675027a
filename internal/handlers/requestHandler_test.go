package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/anmkhn/tradedoc-qa/internal/api"
	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/guidelines"
	"github.com/anmkhn/tradedoc-qa/internal/rag"
)

// mockService implements rag.Service
type mockService struct {
	OnIngest  func(ctx context.Context, sessionID, fileName, path, artifactKind string) (rag.IngestSummary, error)
	OnAnswer  func(ctx context.Context, sessionID, question string) (rag.AnswerResult, error)
	OnFiles   func(ctx context.Context, sessionID string) (rag.FileListing, error)
	OnFilter  func(ctx context.Context, sessionID string, files []string) error
	OnCompare func(ctx context.Context, sessionID string) (string, error)
}

func (m *mockService) Ingest(ctx context.Context, sessionID, fileName, path, artifactKind string) (rag.IngestSummary, error) {
	if m.OnIngest != nil {
		return m.OnIngest(ctx, sessionID, fileName, path, artifactKind)
	}
	return rag.IngestSummary{FileName: fileName}, nil
}

func (m *mockService) Answer(ctx context.Context, sessionID, question string) (rag.AnswerResult, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, sessionID, question)
	}
	return rag.AnswerResult{Answer: "mock answer"}, nil
}

func (m *mockService) SetFileFilter(ctx context.Context, sessionID string, files []string) error {
	if m.OnFilter != nil {
		return m.OnFilter(ctx, sessionID, files)
	}
	return nil
}

func (m *mockService) Files(ctx context.Context, sessionID string) (rag.FileListing, error) {
	if m.OnFiles != nil {
		return m.OnFiles(ctx, sessionID)
	}
	return rag.FileListing{Files: []string{"lc.pdf"}}, nil
}

func (m *mockService) Compare(ctx context.Context, sessionID string) (string, error) {
	if m.OnCompare != nil {
		return m.OnCompare(ctx, sessionID)
	}
	return "report", nil
}

func (m *mockService) Teardown(ctx context.Context, sessionID string) error { return nil }

var (
	sharedMock       = &mockService{}
	sharedGuidelines = guidelines.NewStore()
)

func setupHandlers(t *testing.T) *mockService {
	t.Helper()
	InitHandlers(sharedMock, sharedGuidelines)
	sharedMock.OnIngest = nil
	sharedMock.OnAnswer = nil
	sharedMock.OnFiles = nil
	sharedMock.OnFilter = nil
	sharedMock.OnCompare = nil
	sharedGuidelines.Clear()
	return sharedMock
}

// multipartBody builds a multipart form carrying one named part per entry.
func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, writer.FormDataContentType()
}

func TestPostQueryHandler_RequiresSessionHeader(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()

	PostQueryHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostQueryHandler_Success(t *testing.T) {
	mock := setupHandlers(t)
	mock.OnAnswer = func(_ context.Context, sessionID, question string) (rag.AnswerResult, error) {
		if sessionID != "s1" || question != "what is the amount?" {
			t.Errorf("service got (%q, %q)", sessionID, question)
		}
		return rag.AnswerResult{Answer: "usd 50,000"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"what is the amount?"}`))
	req.Header.Set(config.SessionIDHdr, "s1")
	rec := httptest.NewRecorder()

	PostQueryHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp api.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "usd 50,000" || resp.Question != "what is the amount?" {
		t.Errorf("response = %+v", resp)
	}
}

func TestPostQueryHandler_RejectsEmptyQuestion(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"  "}`))
	req.Header.Set(config.SessionIDHdr, "s1")
	rec := httptest.NewRecorder()

	PostQueryHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostFilterHandler_UnknownFileMapsTo400(t *testing.T) {
	mock := setupHandlers(t)
	mock.OnFilter = func(context.Context, string, []string) error {
		return docmodel.ErrUnknownFile
	}

	req := httptest.NewRequest(http.MethodPost, "/files/filter", strings.NewReader(`{"files":["ghost.pdf"]}`))
	req.Header.Set(config.SessionIDHdr, "s1")
	rec := httptest.NewRecorder()

	PostFilterHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostCompareHandler_MissingArtifactsMapsTo409(t *testing.T) {
	mock := setupHandlers(t)
	mock.OnCompare = func(context.Context, string) (string, error) {
		return "", docmodel.ErrArtifactsMissing
	}

	req := httptest.NewRequest(http.MethodPost, "/compare", nil)
	req.Header.Set(config.SessionIDHdr, "s1")
	rec := httptest.NewRecorder()

	PostCompareHandler(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestPostIngestHandler_DocumentPartCount(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll("temporary_data") })

	cases := []struct {
		name       string
		files      map[string]string
		wantStatus int
	}{
		{"Single_Document", map[string]string{"lc.pdf": "dummy"}, http.StatusOK},
		{"Two_Documents", map[string]string{"lc.pdf": "dummy", "invoice.pdf": "dummy"}, http.StatusBadRequest},
		{"No_Document", nil, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := setupHandlers(t)
			var ingested []string
			mock.OnIngest = func(_ context.Context, _, fileName, _, _ string) (rag.IngestSummary, error) {
				ingested = append(ingested, fileName)
				return rag.IngestSummary{FileName: fileName}, nil
			}

			body, contentType := multipartBody(t, "document", tc.files)
			req := httptest.NewRequest(http.MethodPost, "/ingest", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set(config.SessionIDHdr, "s1")
			rec := httptest.NewRecorder()

			PostIngestHandler(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && len(ingested) != 1 {
				t.Errorf("ingested = %v, want exactly one file", ingested)
			}
			if tc.wantStatus != http.StatusOK && len(ingested) != 0 {
				t.Errorf("service called for a rejected upload: %v", ingested)
			}
		})
	}
}

func TestPostGuidelinesHandler_Text(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/guidelines", strings.NewReader(`{"text":"Always quote amounts with their currency."}`))
	rec := httptest.NewRecorder()

	PostGuidelinesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := sharedGuidelines.Get(); got != "Always quote amounts with their currency." {
		t.Errorf("guidelines = %q", got)
	}
}

func TestPostGuidelinesHandler_FileUpload(t *testing.T) {
	setupHandlers(t)
	t.Cleanup(func() { os.RemoveAll("temporary_data") })

	body, contentType := multipartBody(t, "document", map[string]string{
		"rules.txt": "Flag any discrepancy between shipment and expiry dates.",
	})
	req := httptest.NewRequest(http.MethodPost, "/guidelines", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	PostGuidelinesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := sharedGuidelines.Get(); !strings.Contains(got, "shipment and expiry dates") {
		t.Errorf("guidelines = %q, want uploaded text", got)
	}
}

func TestPostGuidelinesHandler_FileUploadRejections(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll("temporary_data") })

	cases := []struct {
		name       string
		files      map[string]string
		wantStatus int
	}{
		{"Two_Documents", map[string]string{"a.txt": "x", "b.txt": "y"}, http.StatusBadRequest},
		{"Unsupported_Extension", map[string]string{"rules.exe": "x"}, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setupHandlers(t)

			body, contentType := multipartBody(t, "document", tc.files)
			req := httptest.NewRequest(http.MethodPost, "/guidelines", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			PostGuidelinesHandler(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if got := sharedGuidelines.Get(); got != "" {
				t.Errorf("guidelines = %q, want empty after rejection", got)
			}
		})
	}
}

func TestGetFilesHandler_MissingSessionMapsTo404(t *testing.T) {
	mock := setupHandlers(t)
	mock.OnFiles = func(context.Context, string) (rag.FileListing, error) {
		return rag.FileListing{}, docmodel.ErrSessionNotFound
	}

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set(config.SessionIDHdr, "nope")
	rec := httptest.NewRecorder()

	GetFilesHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
