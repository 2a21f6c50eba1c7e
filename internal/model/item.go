package model

import "time"

// Item is a single physical item tracked through its custody chain.
type Item struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Details         string    `json:"details"`
	Creator         Identity  `json:"creator"`
	Lot             string    `json:"lot"`
	CreatedHeight   uint64    `json:"created_height"`
	Status          string    `json:"status"`
	Category        string    `json:"category"`
	Origin          string    `json:"origin"`
	Keeper          Identity  `json:"keeper"`
	Destination     string    `json:"destination,omitempty"`
	ArrivalHeight   *uint64   `json:"arrival_height,omitempty"`
	Metadata        string    `json:"metadata,omitempty"`
	CheckpointCount uint64    `json:"checkpoint_count"`
	TransferCount   uint64    `json:"transfer_count"`
	CustodySeq      uint64    `json:"custody_seq"` // Seq of the first event after the last custody change
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NextSeq returns the per-item sequence number the next event will get.
func (i *Item) NextSeq() uint64 {
	return i.CheckpointCount + i.TransferCount
}

// Item statuses.
const (
	ItemStatusProduced  = "produced"
	ItemStatusShipping  = "shipping"
	ItemStatusDelivered = "delivered"
	ItemStatusSold      = "sold"
	ItemStatusRecalled  = "recalled"
)

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusProduced, ItemStatusShipping, ItemStatusDelivered, ItemStatusSold, ItemStatusRecalled:
		return true
	}
	return false
}

// Verification is the public-trust view of an item. It withholds custody
// and location details.
type Verification struct {
	Authentic bool     `json:"authentic"`
	Creator   Identity `json:"creator,omitempty"`
	Lot       string   `json:"lot,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// ItemFilter narrows ListItems. Empty fields match everything.
type ItemFilter struct {
	Keeper  Identity
	Creator Identity
	Status  string
}
