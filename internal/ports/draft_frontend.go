package ports

import (
	"context"

	"github.com/lifeflow/automailer/internal/core"
)

// DraftFrontend defines the interface for the surfaces that accept prompts
type DraftFrontend interface {
	// ProcessPrompt generates a draft for prompt
	ProcessPrompt(ctx context.Context, prompt string) (core.EmailDraft, error)

	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
