package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeHistory struct {
	records   []*DraftRecord
	recordErr error
}

func (h *fakeHistory) Record(_ context.Context, r *DraftRecord) error {
	if h.recordErr != nil {
		return h.recordErr
	}
	h.records = append(h.records, r)
	return nil
}

func (h *fakeHistory) Recent(_ context.Context, limit int) ([]*DraftRecord, error) {
	if limit <= 0 {
		return []*DraftRecord{}, nil
	}
	out := make([]*DraftRecord, 0, limit)
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func (h *fakeHistory) Delete(context.Context, string) error { return nil }
func (h *fakeHistory) Cleanup(context.Context) error        { return nil }

type fakeSender struct {
	sent    []EmailDraft
	subject string
	err     error
}

func (s *fakeSender) Send(_ context.Context, d EmailDraft, subject string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, d)
	s.subject = subject
	return nil
}

type domainPolicy string

func (p domainPolicy) Allows(address string) bool {
	return strings.HasSuffix(address, "@"+string(p))
}

func newTestService(t *testing.T, p *fakeProvider, h DraftHistory, s DraftSender, policy RecipientPolicy) *DraftService {
	composer := NewEmailComposer(p, zaptest.NewLogger(t), time.Second)
	return NewDraftService(composer, h, s, policy, zaptest.NewLogger(t), time.Hour)
}

func TestDraftService_GenerateRecordsHistory(t *testing.T) {
	h := &fakeHistory{}
	svc := newTestService(t, &fakeProvider{text: "Hi"}, h, nil, nil)
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	draft, err := svc.Generate(context.Background(), "write to jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", draft.To)

	require.Len(t, h.records, 1)
	rec := h.records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Hi", rec.Body)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.Equal(t, fixed.Add(time.Hour), rec.ExpiresAt)
}

func TestDraftService_HistoryFailureDoesNotFailRequest(t *testing.T) {
	h := &fakeHistory{recordErr: errors.New("disk full")}
	svc := newTestService(t, &fakeProvider{text: "Hi"}, h, nil, nil)

	draft, err := svc.Generate(context.Background(), "write to jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Hi", draft.Body)
}

func TestDraftService_GenerateFailureSkipsHistory(t *testing.T) {
	h := &fakeHistory{}
	svc := newTestService(t, &fakeProvider{text: "Hi"}, h, nil, nil)

	_, err := svc.Generate(context.Background(), "no address here")
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Empty(t, h.records)
}

func TestDraftService_Send(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, &fakeProvider{text: "Hello"}, nil, sender, domainPolicy("example.com"))
	assert.True(t, svc.DeliveryEnabled())

	draft, err := svc.Send(context.Background(), "write to jane@example.com", "Intro")
	require.NoError(t, err)
	assert.Equal(t, []EmailDraft{draft}, sender.sent)
	assert.Equal(t, "Intro", sender.subject)
}

func TestDraftService_SendDisabled(t *testing.T) {
	p := &fakeProvider{text: "Hello"}
	svc := newTestService(t, p, nil, nil, nil)
	assert.False(t, svc.DeliveryEnabled())

	_, err := svc.Send(context.Background(), "write to jane@example.com", "")
	assert.ErrorIs(t, err, ErrDeliveryDisabled)
	assert.Zero(t, p.calls)
}

func TestDraftService_SendRecipientNotAllowed(t *testing.T) {
	sender := &fakeSender{}
	p := &fakeProvider{text: "Hello"}
	h := &fakeHistory{}
	svc := newTestService(t, p, h, sender, domainPolicy("example.com"))

	_, err := svc.Send(context.Background(), "write to bob@other.org", "")
	assert.ErrorIs(t, err, ErrRecipientNotAllowed)
	assert.Empty(t, sender.sent)
	assert.Zero(t, p.calls, "refused recipients must not cost a generation")
	assert.Empty(t, h.records)
}

func TestDraftService_SendWithoutAddress(t *testing.T) {
	sender := &fakeSender{}
	p := &fakeProvider{text: "Hello"}
	svc := newTestService(t, p, nil, sender, domainPolicy("example.com"))

	_, err := svc.Send(context.Background(), "write to nobody", "")
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Zero(t, p.calls)
	assert.Empty(t, sender.sent)
}

func TestDraftService_SendDeliveryFailure(t *testing.T) {
	cause := errors.New("connection refused")
	sender := &fakeSender{err: &DeliveryError{Recipient: "jane@example.com", Err: cause}}
	svc := newTestService(t, &fakeProvider{text: "Hello"}, nil, sender, nil)

	_, err := svc.Send(context.Background(), "write to jane@example.com", "")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.ErrorIs(t, err, cause)
}

func TestDraftService_RecentWithoutHistory(t *testing.T) {
	svc := newTestService(t, &fakeProvider{}, nil, nil, nil)
	records, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "fake/test", svc.ProviderName())
}

func TestRecentRecipients(t *testing.T) {
	records := []*DraftRecord{
		{To: "b@x.io"}, {To: "a@x.io"}, {To: "b@x.io"}, {To: "c@x.io"},
	}
	assert.Equal(t, []string{"b@x.io", "a@x.io", "c@x.io"}, RecentRecipients(records))
	assert.Empty(t, RecentRecipients(nil))
}
