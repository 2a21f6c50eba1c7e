package model

import "time"

// Event is one entry in an item's append-only history.
//
// Seq orders all events of an item. EventID is the id within the event's
// kind (checkpoints and transfers are counted separately), so only the pair
// (Kind, EventID) or Seq identifies an event on its own.
type Event struct {
	ItemID      uint64    `json:"item_id"`
	Seq         uint64    `json:"seq"`
	Kind        string    `json:"kind"`
	EventID     uint64    `json:"event_id"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Height      uint64    `json:"height"`
	Actor       Identity  `json:"actor"`
	FromKeeper  Identity  `json:"from_keeper,omitempty"`
	ToKeeper    Identity  `json:"to_keeper,omitempty"`
	Temperature *int      `json:"temperature,omitempty"`
	Humidity    *uint     `json:"humidity,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Hash        Digest    `json:"hash"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event types.
const (
	EventTypeCheckpoint       = "checkpoint"
	EventTypeTransferStart    = "transfer-start"
	EventTypeTransferComplete = "transfer-complete"
)

// Event kinds. Each kind has its own counter on the item.
const (
	EventKindCheckpoint = "checkpoint"
	EventKindTransfer   = "transfer"
)

// Event statuses. Nothing writes EventStatusActive; it is accepted by the
// schema so stored records can carry it.
const (
	EventStatusActive    = "active"
	EventStatusPending   = "pending"
	EventStatusCompleted = "completed"
	EventStatusRejected  = "rejected"
)

// EventKind maps an event type to the counter it draws its id from.
// It returns "" for unknown types.
func EventKind(eventType string) string {
	switch eventType {
	case EventTypeCheckpoint:
		return EventKindCheckpoint
	case EventTypeTransferStart, EventTypeTransferComplete:
		return EventKindTransfer
	}
	return ""
}

// ValidEventKind reports whether k is a known event kind.
func ValidEventKind(k string) bool {
	return k == EventKindCheckpoint || k == EventKindTransfer
}
