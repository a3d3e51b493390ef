package share

import (
	"time"

	"github.com/google/uuid"
)

type EventAction string

const (
	EventCreated EventAction = "share.created"
	EventDeleted EventAction = "share.deleted"
	EventSwept   EventAction = "share.swept"
)

type Event struct {
	ID        uuid.UUID   `json:"event_id"`
	TS        time.Time   `json:"time_stamp"`
	Action    EventAction `json:"event_action"`
	ShareID   string      `json:"share_id"`
	OwnerID   string      `json:"owner_id,omitempty"`
	FileName  string      `json:"file_name,omitempty"`
	SizeBytes int         `json:"size_bytes,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

func NewEvent(action EventAction, shareID string, now time.Time) Event {
	return Event{
		ID:      uuid.New(),
		TS:      now,
		Action:  action,
		ShareID: shareID,
	}
}
