package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipientPolicy decides whether drafts may be delivered to an address
type RecipientPolicy interface {
	Allows(address string) bool
}

// DraftService is the application service behind the frontends
type DraftService struct {
	composer   *EmailComposer
	history    DraftHistory
	sender     DraftSender
	policy     RecipientPolicy
	logger     *zap.Logger
	historyTTL time.Duration
	now        func() time.Time
}

// NewDraftService creates a new draft service. history, sender and policy may be nil.
func NewDraftService(
	composer *EmailComposer,
	history DraftHistory,
	sender DraftSender,
	policy RecipientPolicy,
	logger *zap.Logger,
	historyTTL time.Duration,
) *DraftService {
	return &DraftService{
		composer:   composer,
		history:    history,
		sender:     sender,
		policy:     policy,
		logger:     logger,
		historyTTL: historyTTL,
		now:        time.Now,
	}
}

// ProviderName returns the name of the configured text-generation provider
func (s *DraftService) ProviderName() string {
	return s.composer.provider.Name()
}

// DeliveryEnabled reports whether drafts can be sent
func (s *DraftService) DeliveryEnabled() bool {
	return s.sender != nil
}

// Generate composes a draft and keeps it in the history store
func (s *DraftService) Generate(ctx context.Context, prompt string) (EmailDraft, error) {
	draft, err := s.composer.Process(ctx, prompt)
	if err != nil {
		return EmailDraft{}, err
	}

	if s.history != nil {
		now := s.now()
		record := &DraftRecord{
			ID:        uuid.NewString(),
			To:        draft.To,
			Body:      draft.Body,
			CreatedAt: now,
			ExpiresAt: now.Add(s.historyTTL),
		}
		if err := s.history.Record(ctx, record); err != nil {
			s.logger.Error("Failed to record draft", zap.Error(err), zap.String("recipient", draft.To))
		}
	}

	return draft, nil
}

// Send composes a draft and delivers it to the extracted recipient
func (s *DraftService) Send(ctx context.Context, prompt, subject string) (EmailDraft, error) {
	if s.sender == nil {
		return EmailDraft{}, ErrDeliveryDisabled
	}

	// Refused recipients never reach the provider or the history store
	if to, ok := ExtractAddress(prompt); ok && s.policy != nil && !s.policy.Allows(to) {
		s.logger.Warn("Recipient not allowed", zap.String("recipient", to))
		return EmailDraft{}, ErrRecipientNotAllowed
	}

	draft, err := s.Generate(ctx, prompt)
	if err != nil {
		return EmailDraft{}, err
	}

	if err := s.sender.Send(ctx, draft, subject); err != nil {
		return EmailDraft{}, err
	}

	s.logger.Info("Delivered draft", zap.String("recipient", draft.To))
	return draft, nil
}

// Recent returns the most recent drafts, newest first
func (s *DraftService) Recent(ctx context.Context, limit int) ([]*DraftRecord, error) {
	if s.history == nil {
		return []*DraftRecord{}, nil
	}
	return s.history.Recent(ctx, limit)
}

// RecentRecipients de-duplicates recipients of records, preserving order
func RecentRecipients(records []*DraftRecord) []string {
	seen := make(map[string]struct{}, len(records))
	recipients := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.To]; ok {
			continue
		}
		seen[r.To] = struct{}{}
		recipients = append(recipients, r.To)
	}
	return recipients
}
