package model

// Identity is an opaque, unforgeable caller identity.
type Identity string

// NullIdentity is the reserved burn identity. Nothing may be delegated to it.
const NullIdentity Identity = "null"

func (id Identity) String() string { return string(id) }
