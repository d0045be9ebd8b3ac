package fixtures

import (
	"fmt"
	"time"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"

	"github.com/google/uuid"
)

// BaseTime anchors fixture timestamps so ordering is deterministic
var BaseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// NodeBuilder helps create chat nodes with default values
type NodeBuilder struct {
	id        valueobjects.PersistedID
	ownerID   valueobjects.UserID
	title     string
	createdAt time.Time
}

func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{
		id:        valueobjects.PersistedID(uuid.New().String()),
		ownerID:   "test-user-123",
		title:     "Test Node",
		createdAt: BaseTime,
	}
}

func (b *NodeBuilder) WithID(id string) *NodeBuilder {
	b.id = valueobjects.PersistedID(id)
	return b
}

func (b *NodeBuilder) WithOwner(ownerID string) *NodeBuilder {
	b.ownerID = valueobjects.UserID(ownerID)
	return b
}

func (b *NodeBuilder) WithTitle(title string) *NodeBuilder {
	b.title = title
	return b
}

func (b *NodeBuilder) Build() *entities.ChatNode {
	node, err := entities.ReconstructChatNode(b.id, b.ownerID, b.title, b.createdAt)
	if err != nil {
		panic(fmt.Sprintf("fixtures: invalid node: %v", err))
	}
	return node
}

// MessageBuilder helps create chat messages with default values
type MessageBuilder struct {
	id        string
	nodeID    valueobjects.PersistedID
	role      valueobjects.Role
	content   string
	createdAt time.Time
}

func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		id:        uuid.New().String(),
		nodeID:    "test-node-123",
		role:      valueobjects.RoleUser,
		content:   "Test message",
		createdAt: BaseTime,
	}
}

func (b *MessageBuilder) WithID(id string) *MessageBuilder {
	b.id = id
	return b
}

func (b *MessageBuilder) ForNode(nodeID string) *MessageBuilder {
	b.nodeID = valueobjects.PersistedID(nodeID)
	return b
}

func (b *MessageBuilder) AsUser(content string) *MessageBuilder {
	b.role = valueobjects.RoleUser
	b.content = content
	return b
}

func (b *MessageBuilder) AsAssistant(content string) *MessageBuilder {
	b.role = valueobjects.RoleAssistant
	b.content = content
	return b
}

func (b *MessageBuilder) AsSystem(content string) *MessageBuilder {
	b.role = valueobjects.RoleSystem
	b.content = content
	return b
}

// At sets the creation time as an offset from BaseTime
func (b *MessageBuilder) At(offset time.Duration) *MessageBuilder {
	b.createdAt = BaseTime.Add(offset)
	return b
}

func (b *MessageBuilder) Build() *entities.Message {
	msg, err := entities.ReconstructMessage(b.id, b.nodeID, b.role, b.content, b.createdAt)
	if err != nil {
		panic(fmt.Sprintf("fixtures: invalid message: %v", err))
	}
	return msg
}
