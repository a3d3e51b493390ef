package share

import (
	"time"
)

type (
	Share struct {
		ID      uint64
		ShareID string
		Content []byte
		OwnerID string

		CreatedAt time.Time
		UpdatedAt time.Time
		ExpiresAt *time.Time
	}
	Shares []*Share

	Summary struct {
		ID        uint64
		ShareID   string
		ExpiresAt *time.Time
		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Summaries []*Summary
)
