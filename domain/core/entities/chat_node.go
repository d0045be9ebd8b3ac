package entities

import (
	"time"

	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
)

// ChatNode is a materialized canvas node as the storage layer knows it.
// The owner is the sole authorization boundary for message aggregation.
type ChatNode struct {
	id        valueobjects.PersistedID
	ownerID   valueobjects.UserID
	title     string
	createdAt time.Time
}

// ReconstructChatNode rebuilds a node from repository data
func ReconstructChatNode(
	id valueobjects.PersistedID,
	ownerID valueobjects.UserID,
	title string,
	createdAt time.Time,
) (*ChatNode, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("node owner cannot be empty")
	}

	return &ChatNode{
		id:        id,
		ownerID:   ownerID,
		title:     title,
		createdAt: createdAt,
	}, nil
}

// ID returns the node's persisted identifier
func (n *ChatNode) ID() valueobjects.PersistedID {
	return n.id
}

// OwnerID returns the owning user
func (n *ChatNode) OwnerID() valueobjects.UserID {
	return n.ownerID
}

// Title returns the node's display title
func (n *ChatNode) Title() string {
	return n.title
}

// CreatedAt returns when the node was materialized
func (n *ChatNode) CreatedAt() time.Time {
	return n.createdAt
}

// IsOwnedBy reports whether userID owns the node
func (n *ChatNode) IsOwnedBy(userID valueobjects.UserID) bool {
	return n.ownerID == userID
}
