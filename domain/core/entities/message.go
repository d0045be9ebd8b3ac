package entities

import (
	"sort"
	"time"

	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
)

// Message is a stored chat message belonging to one node
type Message struct {
	id        string
	nodeID    valueobjects.PersistedID
	role      valueobjects.Role
	content   string
	createdAt time.Time
}

// ReconstructMessage rebuilds a message from repository data
func ReconstructMessage(
	id string,
	nodeID valueobjects.PersistedID,
	role valueobjects.Role,
	content string,
	createdAt time.Time,
) (*Message, error) {
	if nodeID.IsZero() {
		return nil, pkgerrors.NewValidationError("message node id cannot be empty")
	}
	if !role.IsValid() {
		return nil, pkgerrors.NewValidationError("message role is invalid: " + role.String())
	}

	return &Message{
		id:        id,
		nodeID:    nodeID,
		role:      role,
		content:   content,
		createdAt: createdAt,
	}, nil
}

// ID returns the storage identifier of the message
func (m *Message) ID() string {
	return m.id
}

// NodeID returns the node the message belongs to
func (m *Message) NodeID() valueobjects.PersistedID {
	return m.nodeID
}

// Role returns the speaker role
func (m *Message) Role() valueobjects.Role {
	return m.role
}

// Content returns the message text
func (m *Message) Content() string {
	return m.content
}

// CreatedAt returns the creation timestamp
func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

// ToChatMessage drops storage-only fields
func (m *Message) ToChatMessage() valueobjects.ChatMessage {
	return valueobjects.ChatMessage{Role: m.role, Content: m.content}
}

// SortByCreatedAt orders messages by creation time ascending.
// The sort is stable, so messages with equal timestamps keep their input order.
func SortByCreatedAt(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].createdAt.Before(messages[j].createdAt)
	})
}
