package share

import (
	"encoding/json"
	"time"
)

type (
	ID uint64

	Share struct {
		ID      ID
		ShareID string
		Content json.RawMessage
		OwnerID string

		CreatedAt time.Time
		UpdatedAt time.Time
		ExpiresAt *time.Time
	}
	Shares []*Share

	// Summary is the list view of a share: everything but the content.
	Summary struct {
		ID        ID
		ShareID   string
		ExpiresAt *time.Time
		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Summaries []*Summary

	// Draft is what the lifecycle service hands to the store on creation.
	Draft struct {
		Content   json.RawMessage
		OwnerID   string
		CreatedAt time.Time
		ExpiresAt *time.Time
	}

	Receipt struct {
		ShareID   string
		ShareURL  string
		ExpiresAt *time.Time
		CreatedAt time.Time
	}

	View struct {
		Content   json.RawMessage
		CreatedAt time.Time
		ExpiresAt *time.Time
	}
)

// IsExpired reports whether the share is past its visibility window at now.
// A share expiring exactly at now is still visible.
func (s *Share) IsExpired(now time.Time) bool {
	if s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}

func (s *Share) IsPermanent() bool { return s.ExpiresAt == nil }
