package core

import (
	"time"
)

// EmailDraft is the structured result of a successful pipeline run
type EmailDraft struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// DraftRecord is a draft kept in the history store
type DraftRecord struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is past its expiry at the given time
func (r *DraftRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
