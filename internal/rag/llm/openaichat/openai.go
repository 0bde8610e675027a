// Package openaichat is the OpenAI-compatible answer provider. Pointing it
// at an Azure OpenAI deployment only requires a base URL.
package openaichat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

type Client struct {
	client openai.Client
	model  string
	logger *logging.Logger
}

// NewClient builds the provider. baseURL is optional and overrides the
// public OpenAI endpoint.
func NewClient(modelName, apikey, baseURL string) llm.Provider {
	opts := []option.RequestOption{option.WithAPIKey(apikey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  modelName,
		logger: logging.NewLogger("llm_openai"),
	}
}

func (c *Client) Answer(ctx context.Context, question string, contextChunks []docmodel.Chunk, tables []docmodel.TableRecord, guidelines string) (string, error) {
	prompt := llm.BuildAnswerPrompt(question, contextChunks, tables, guidelines)
	return c.complete(ctx, llm.SystemInstruction(), prompt)
}

func (c *Client) Compare(ctx context.Context, letterOfCredit, invoice json.RawMessage) (string, error) {
	return c.complete(ctx, llm.CompareInstruction(), llm.BuildComparePrompt(letterOfCredit, invoice))
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.AnswerTimeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(config.ModelTemperature),
	})
	if err != nil {
		c.logger.Error("OpenAI completion failed", "error", err)
		return "", &docmodel.AnswerError{Err: err}
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", &docmodel.AnswerError{Err: errors.New("empty completion")}
	}
	return completion.Choices[0].Message.Content, nil
}
