package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Hello "), genai.Text("Jane")}}},
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello Jane", text)
}

func TestResponseText_SkipsNonTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Blob{MIMEType: "image/png", Data: []byte{0x1}},
				genai.Text("body"),
			}}},
		},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "body", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorContains(t, err, "empty response")

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorContains(t, err, "empty response")

	_, err = responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	})
	assert.ErrorContains(t, err, "prompt blocked")

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorContains(t, err, "finish reason")
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := config.NewFromViper(config.NewEmptyViper())

	_, err := NewFactory(cfg, logger, utils.NewTextProcessor(logger)).CreateClient()
	assert.ErrorContains(t, err, "API key is required")
}
