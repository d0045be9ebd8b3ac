package ports

import (
	"context"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
)

// NodeOwnerReader resolves the owners of materialized nodes.
// This is a port in hexagonal architecture - the core never owns the storage behind it.
type NodeOwnerReader interface {
	// GetOwners returns the owner of every id that exists.
	// Missing ids are absent from the map; they are not an error.
	GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error)
}

// MessageReader reads stored chat messages
type MessageReader interface {
	// ListByNodes returns all messages of the given nodes in any order
	ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error)
}

// ChatStore is the read contract context assembly consumes
type ChatStore interface {
	NodeOwnerReader
	MessageReader
}

// ChatSeeder loads chat data into a store. Only the offline tooling uses it.
type ChatSeeder interface {
	SaveNode(ctx context.Context, node *entities.ChatNode) error
	SaveMessage(ctx context.Context, message *entities.Message) error
}
