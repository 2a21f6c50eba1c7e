package model

// Certification records an item's compliance with a standard.
type Certification struct {
	ItemID        uint64   `json:"item_id"`
	Standard      string   `json:"standard"`
	Authority     Identity `json:"authority"`
	IssuedHeight  uint64   `json:"issued_height"`
	ExpiresHeight uint64   `json:"expires_height"`
	Hash          Digest   `json:"hash"`
	URL           string   `json:"url,omitempty"`
	State         string   `json:"state"`
}

// ValidAt reports whether the certification is in force at the given height.
func (c *Certification) ValidAt(height uint64) bool {
	return c.State == StateActive && height < c.ExpiresHeight
}
