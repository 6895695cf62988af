package core

import (
	"context"
)

// TextGenerationProvider turns an instruction into generated text.
// Implementations must honour ctx cancellation.
type TextGenerationProvider interface {
	// Generate sends a single instruction and returns the generated text
	Generate(ctx context.Context, instruction string) (string, error)

	// Name identifies the provider and model, e.g. "gemini/gemini-2.5-flash"
	Name() string
}

// DraftHistory stores recently generated drafts
type DraftHistory interface {
	// Record stores a draft
	Record(ctx context.Context, record *DraftRecord) error

	// Recent returns up to limit unexpired drafts, newest first.
	// A limit <= 0 returns an empty slice.
	Recent(ctx context.Context, limit int) ([]*DraftRecord, error)

	// Delete removes a draft
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired drafts
	Cleanup(ctx context.Context) error
}

// DraftSender delivers a draft to its recipient
type DraftSender interface {
	Send(ctx context.Context, draft EmailDraft, subject string) error
}
