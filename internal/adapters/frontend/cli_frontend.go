package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/utils"
	"go.uber.org/zap"
)

const promptPreviewRunes = 200

// CLIFrontend generates a single draft and prints it
type CLIFrontend struct {
	service       *core.DraftService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	out           io.Writer
	verbose       bool
	jsonOutput    bool
}

// NewCLIFrontend creates a new CLI frontend writing to stdout
func NewCLIFrontend(service *core.DraftService, logger *zap.Logger, textProcessor *utils.TextProcessor, verbose, jsonOutput bool) *CLIFrontend {
	return &CLIFrontend{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		out:           os.Stdout,
		verbose:       verbose,
		jsonOutput:    jsonOutput,
	}
}

// SetOutput redirects the printed summary
func (f *CLIFrontend) SetOutput(w io.Writer) {
	f.out = w
}

// ProcessPrompt generates a draft and prints the summary
func (f *CLIFrontend) ProcessPrompt(ctx context.Context, prompt string) (core.EmailDraft, error) {
	f.logger.Debug("Processing prompt", zap.Int("prompt_length", len(prompt)))

	if !f.jsonOutput {
		fmt.Fprintf(f.out, "\n=== Prompt ===\n")
		fmt.Fprintf(f.out, "Length: %d characters\n", len([]rune(prompt)))
		if f.verbose {
			fmt.Fprintf(f.out, "Preview: %s\n", f.textProcessor.Preview(prompt, promptPreviewRunes))
		}
		fmt.Fprintf(f.out, "\n=== Generation ===\n")
		fmt.Fprintf(f.out, "Generating email with %s...\n", f.service.ProviderName())
	}

	start := time.Now()
	draft, err := f.service.Generate(ctx, prompt)
	if err != nil {
		f.logger.Error("Failed to generate email", zap.Error(err), zap.String("kind", core.Kind(err)))
		if !f.jsonOutput {
			fmt.Fprintf(f.out, "Error (%s): %v\n", core.Kind(err), err)
		}
		return core.EmailDraft{}, err
	}
	duration := time.Since(start)

	if f.jsonOutput {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(draft); err != nil {
			return core.EmailDraft{}, fmt.Errorf("failed to encode draft: %w", err)
		}
		return draft, nil
	}

	fmt.Fprintf(f.out, "\n=== Draft ===\n")
	fmt.Fprintf(f.out, "To: %s\n", draft.To)
	fmt.Fprintf(f.out, "\n%s\n", draft.Body)
	fmt.Fprintf(f.out, "\nModel used: %s\n", f.service.ProviderName())
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return draft, nil
}

// Start is a no-op for the CLI frontend
func (f *CLIFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CLIFrontend) Stop() error {
	return nil
}
