package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anmkhn/tradedoc-qa/internal/adapter"
	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message, detail string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(httpCode, message, detail))
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var extractionErr *docmodel.ExtractionError

	switch {
	case errors.Is(err, docmodel.ErrSessionNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "Session not found", "")
	case errors.Is(err, docmodel.ErrUnknownFile):
		WriteErrorResponse(w, http.StatusBadRequest, "Unknown file in filter", err.Error())
	case errors.Is(err, docmodel.ErrArtifactsMissing):
		WriteErrorResponse(w, http.StatusConflict, "Comparison not ready", err.Error())
	case errors.As(err, &extractionErr):
		WriteErrorResponse(w, http.StatusUnprocessableEntity, "Document could not be processed", extractionErr.Error())
	default:
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

// sessionID pulls the caller's session id from the request header. Every
// session-scoped route requires it.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(config.SessionIDHdr)
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, config.SessionIDHdr+" header is required", "")
		return "", false
	}
	return id, true
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

// saveUpload copies one multipart part into targetDir under a unique name
// and returns the path. The caller removes the file when done with it.
func saveUpload(targetDir string, header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tempName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	tempFilePath := filepath.Join(targetDir, tempName)
	dst, err := os.Create(tempFilePath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempFilePath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempFilePath)
		return "", err
	}
	return tempFilePath, nil
}
