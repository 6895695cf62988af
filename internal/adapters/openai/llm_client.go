package openai

import (
	"context"
	"fmt"

	"github.com/lifeflow/automailer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the TextGenerationProvider interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxInputSize  int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxInputSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxInputSize:  maxInputSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Name identifies the provider and model
func (c *OpenAIClient) Name() string {
	return "openai/" + c.modelName
}

// Generate sends the instruction as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, instruction string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.textProcessor.ProcessText(instruction, c.maxInputSize),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	choice := resp.Choices[0]
	c.logger.Debug("OpenAI completion received",
		zap.String("id", resp.ID),
		zap.String("finish_reason", string(choice.FinishReason)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return choice.Message.Content, nil
}
