package model

// Inspector is an identity an organization has delegated authority to.
// Records are never deleted; revocation flips State.
type Inspector struct {
	Organization     Identity `json:"organization"`
	Inspector        Identity `json:"inspector"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	State            string   `json:"state"`
	AuthorizedHeight uint64   `json:"authorized_height"`
	UpdatedHeight    uint64   `json:"updated_height"`
}

// Active reports whether the delegation is currently in force.
func (i *Inspector) Active() bool {
	return i.State == StateActive
}

// Recorded states for soft-deleted records.
const (
	StateActive  = "active"
	StateRevoked = "revoked"
)
