package gemini

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/genai"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

type Client struct {
	client    *genai.Client
	modelName string
	logger    *logging.Logger
}

func NewClient(ctx context.Context, modelName, apikey string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, &docmodel.AnswerError{Err: err}
	}
	return &Client{
		client:    c,
		modelName: modelName,
		logger:    logging.NewLogger("llm_gemini"),
	}, nil
}

func (c *Client) Answer(ctx context.Context, question string, contextChunks []docmodel.Chunk, tables []docmodel.TableRecord, guidelines string) (string, error) {
	prompt := llm.BuildAnswerPrompt(question, contextChunks, tables, guidelines)
	return c.generate(ctx, systemContent(), prompt)
}

func (c *Client) Compare(ctx context.Context, letterOfCredit, invoice json.RawMessage) (string, error) {
	return c.generate(ctx, compareContent(), llm.BuildComparePrompt(letterOfCredit, invoice))
}

func (c *Client) generate(ctx context.Context, system *genai.Content, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.AnswerTimeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(
		callCtx,
		c.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: system,
			Temperature:       genai.Ptr[float32](config.ModelTemperature),
		},
	)
	if err != nil {
		c.logger.Error("Gemini generation failed", "error", err)
		return "", &docmodel.AnswerError{Err: err}
	}
	text := result.Text()
	if text == "" {
		return "", &docmodel.AnswerError{Err: errors.New("empty completion")}
	}
	return text, nil
}

func systemContent() *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: llm.SystemInstruction()}}}
}

func compareContent() *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: llm.CompareInstruction()}}}
}
