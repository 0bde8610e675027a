package google

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/rag/embedding"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var dimension = config.EmbeddingOutputDimensionality

// Client embeds text through the Google embedding API.
type Client struct {
	genAi  *genai.Client
	model  string
	logger *logging.Logger
}

// NewClient constructs the embedder. It is an explicitly injected resource;
// nothing in this package holds a lazily-built global.
func NewClient(ctx context.Context, modelName, apikey string) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, &docmodel.EmbeddingError{Err: err}
	}
	return &Client{
		genAi:  c,
		model:  modelName,
		logger: logging.NewLogger("google_embedding"),
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		c.logger.Error("Error getting embedding from Google", "error", err.Error())
		return nil, &docmodel.EmbeddingError{Err: err}
	}
	if len(result.Embeddings) == 0 {
		return nil, &docmodel.EmbeddingError{Err: errors.New("empty embedding response")}
	}
	return result.Embeddings[0].Values, nil
}

func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result, err := c.doCall(ctx, getContent(texts))
	if err != nil && shouldRetry(err) {
		c.logger.Warn("Rate limit hit, retrying in 5 seconds", "error", err)
		select {
		case <-ctx.Done():
			return nil, &docmodel.EmbeddingError{Err: ctx.Err()}
		case <-time.After(5 * time.Second):
		}
		result, err = c.doCall(ctx, getContent(texts))
	}
	if err != nil {
		c.logger.Error("Error getting batch embeddings from Google", "error", err.Error())
		return nil, &docmodel.EmbeddingError{Err: err}
	}
	if len(result.Embeddings) != len(texts) {
		return nil, &docmodel.EmbeddingError{Err: errors.New("embedding count does not match input count")}
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()
	return c.genAi.Models.EmbedContent(callCtx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}
	return contents
}

func shouldRetry(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
