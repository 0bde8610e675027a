// Package parser calls the external document-intelligence service that
// extracts structured fields from letters of credit and invoices. Parsing is
// best effort: ingestion proceeds even when the parser is down, the session
// just has no artifact for /compare.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Client submits documents to the parsing service over a pooled connection.
type Client struct {
	httpClient *http.Client
	endpoints  map[string]string
	logger     *logging.Logger
}

// NewClient reads the per-artifact endpoints from the environment. A kind
// with no configured endpoint is simply not parseable.
func NewClient() *Client {
	endpoints := map[string]string{}
	if u := os.Getenv("LC_PARSER_URL"); u != "" {
		endpoints[docmodel.ArtifactLetterOfCredit] = u
	}
	if u := os.Getenv("INVOICE_PARSER_URL"); u != "" {
		endpoints[docmodel.ArtifactInvoice] = u
	}
	return &Client{
		httpClient: &http.Client{Transport: pooledTransport, Timeout: config.ParserTimeout},
		endpoints:  endpoints,
		logger:     logging.NewLogger("parser"),
	}
}

// Supports reports whether an endpoint is configured for the artifact kind.
func (c *Client) Supports(kind string) bool {
	_, ok := c.endpoints[kind]
	return ok
}

// Parse uploads the file at path to the endpoint for kind and returns the
// raw JSON the service produced.
func (c *Client) Parse(ctx context.Context, kind, path string) (json.RawMessage, error) {
	endpoint, ok := c.endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("no parser endpoint configured for %q", kind)
	}

	body, contentType, err := multipartFile(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("parser request failed", "kind", kind, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("parser returned non-200", "kind", kind, "status", resp.StatusCode)
		return nil, fmt.Errorf("parser returned status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("parser returned invalid JSON for %q", kind)
	}
	return json.RawMessage(payload), nil
}

func multipartFile(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
