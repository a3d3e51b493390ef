package share

import (
	"encoding/json"
	"time"
)

type (
	Created struct {
		ShareID   string     `json:"shareId"`
		ExpiresAt *time.Time `json:"expiresAt"`
		CreatedAt time.Time  `json:"createdAt"`
		ShareURL  string     `json:"shareUrl"`
	}
	View struct {
		Content   json.RawMessage `json:"content"`
		CreatedAt time.Time       `json:"createdAt"`
		ExpiresAt *time.Time      `json:"expiresAt"`
	}
	Summary struct {
		ID        uint64     `json:"id"`
		ShareID   string     `json:"shareId"`
		ExpiresAt *time.Time `json:"expiresAt"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}
	Summaries []Summary
)
