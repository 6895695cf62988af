package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const instructionFormat = `Generate a professional cold email based on this request: "%s".
Only return the email body text, without subject line, greetings can be included.
Make it concise and professional.`

// BuildInstruction embeds the unmodified prompt into the generation instruction
func BuildInstruction(prompt string) string {
	return fmt.Sprintf(instructionFormat, prompt)
}

// EmailComposer turns a free-text prompt into an EmailDraft
type EmailComposer struct {
	provider TextGenerationProvider
	logger   *zap.Logger
	timeout  time.Duration
}

// NewEmailComposer creates a new composer. A zero timeout leaves the provider call unbounded.
func NewEmailComposer(provider TextGenerationProvider, logger *zap.Logger, timeout time.Duration) *EmailComposer {
	return &EmailComposer{
		provider: provider,
		logger:   logger,
		timeout:  timeout,
	}
}

// Process extracts the recipient, generates the body and returns the draft
func (c *EmailComposer) Process(ctx context.Context, prompt string) (EmailDraft, error) {
	to, ok := ExtractAddress(prompt)
	if !ok {
		return EmailDraft{}, &AddressNotFoundError{Prompt: prompt}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("Generating email body",
		zap.String("recipient", to),
		zap.String("provider", c.provider.Name()))

	text, err := c.provider.Generate(callCtx, BuildInstruction(prompt))
	if err != nil {
		return EmailDraft{}, &GenerationError{Reason: failureReason(callCtx), Err: err}
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return EmailDraft{}, &GenerationError{Reason: ReasonEmptyResult}
	}

	return EmailDraft{To: to, Body: body}, nil
}

// failureReason classifies a provider failure using the state of the call context
func failureReason(ctx context.Context) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return ReasonCancelled
	default:
		return ReasonProviderError
	}
}
