package googlegenai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifeflow/automailer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Options configures a GenAIClient
type Options struct {
	APIKey       string
	Backend      string
	Project      string
	Location     string
	BaseURL      string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxInputSize int
}

// GenAIClient implements TextGenerationProvider on the unified Google GenAI SDK,
// which serves both the Gemini Developer API and Vertex AI
type GenAIClient struct {
	client        *genai.Client
	modelName     string
	config        *genai.GenerateContentConfig
	maxInputSize  int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGenAIClient creates a new GenAI client
func NewGenAIClient(ctx context.Context, opts Options, logger *zap.Logger, textProcessor *utils.TextProcessor) (*GenAIClient, error) {
	cc := &genai.ClientConfig{}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "gemini":
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("genai API key is required for the gemini backend")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = strings.TrimSpace(opts.APIKey)
	case "vertex":
		if strings.TrimSpace(opts.Project) == "" {
			return nil, fmt.Errorf("genai project is required for the vertex backend")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = opts.Project
		cc.Location = opts.Location
	default:
		return nil, fmt.Errorf("unsupported genai backend: %s", opts.Backend)
	}
	if strings.TrimSpace(opts.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(opts.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: opts.ModelName,
		config: &genai.GenerateContentConfig{
			CandidateCount:  1,
			MaxOutputTokens: int32(opts.MaxTokens),
			Temperature:     genai.Ptr(opts.Temperature),
			TopP:            genai.Ptr(opts.TopP),
		},
		maxInputSize:  opts.MaxInputSize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Name identifies the provider and model
func (c *GenAIClient) Name() string {
	return "genai/" + c.modelName
}

// Generate sends the instruction as a single user turn
func (c *GenAIClient) Generate(ctx context.Context, instruction string) (string, error) {
	prompt := c.textProcessor.ProcessText(instruction, c.maxInputSize)

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with GenAI: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from GenAI")
	}

	c.logger.Debug("GenAI content received",
		zap.String("model", c.modelName),
		zap.String("finish_reason", string(resp.Candidates[0].FinishReason)))

	return resp.Text(), nil
}
