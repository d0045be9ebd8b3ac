package valueobjects

// NodeRef identifies a chat node as it exists on the live canvas.
// It may differ from the node's PersistedID until the node is first
// materialized in storage.
type NodeRef string

// String returns the string representation of the NodeRef
func (r NodeRef) String() string {
	return string(r)
}

// IsZero checks if the NodeRef is the zero value
func (r NodeRef) IsZero() bool {
	return r == ""
}

// PersistedID identifies a chat node in the storage layer
type PersistedID string

// String returns the string representation of the PersistedID
func (id PersistedID) String() string {
	return string(id)
}

// IsZero checks if the PersistedID is the zero value
func (id PersistedID) IsZero() bool {
	return id == ""
}

// UserID identifies the owner of persisted chat nodes
type UserID string

// String returns the string representation of the UserID
func (id UserID) String() string {
	return string(id)
}

// IsZero checks if the UserID is the zero value
func (id UserID) IsZero() bool {
	return id == ""
}

// PersistedIDStrings converts ids to plain strings, mostly for logging
func PersistedIDStrings(ids []PersistedID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// NodeRefStrings converts refs to plain strings, mostly for logging
func NodeRefStrings(refs []NodeRef) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = string(ref)
	}
	return out
}
