package memory

import (
	"context"
	"fmt"
	"sync"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
)

// InMemoryChatStore provides an in-memory implementation of ChatStore
type InMemoryChatStore struct {
	mu       sync.RWMutex
	nodes    map[valueobjects.PersistedID]*entities.ChatNode
	messages map[valueobjects.PersistedID][]*entities.Message
}

// NewInMemoryChatStore creates a new in-memory chat store
func NewInMemoryChatStore() *InMemoryChatStore {
	return &InMemoryChatStore{
		nodes:    make(map[valueobjects.PersistedID]*entities.ChatNode),
		messages: make(map[valueobjects.PersistedID][]*entities.Message),
	}
}

// SaveNode stores or replaces a node
func (s *InMemoryChatStore) SaveNode(ctx context.Context, node *entities.ChatNode) error {
	if node == nil {
		return fmt.Errorf("invalid node")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[node.ID()] = node
	return nil
}

// SaveMessage appends a message to its node
func (s *InMemoryChatStore) SaveMessage(ctx context.Context, message *entities.Message) error {
	if message == nil {
		return fmt.Errorf("invalid message")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[message.NodeID()] = append(s.messages[message.NodeID()], message)
	return nil
}

// GetOwners returns the owner of every known id
func (s *InMemoryChatStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make(map[valueobjects.PersistedID]valueobjects.UserID, len(ids))
	for _, id := range ids {
		if node, exists := s.nodes[id]; exists {
			owners[id] = node.OwnerID()
		}
	}
	return owners, nil
}

// ListByNodes returns messages grouped by node in request order,
// each node's messages in insertion order
func (s *InMemoryChatStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.Message
	for _, id := range ids {
		result = append(result, s.messages[id]...)
	}
	return result, nil
}

