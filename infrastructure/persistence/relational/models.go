package relational

import (
	"time"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
)

type chatNodeRow struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Title     string    `gorm:"column:title;not null;default:''" json:"title"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (chatNodeRow) TableName() string { return "chat_node" }

type chatMessageRow struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	NodeID    string    `gorm:"column:node_id;not null;index:idx_chat_message_node_created,priority:1" json:"node_id"`
	Role      string    `gorm:"column:role;not null" json:"role"`
	Content   string    `gorm:"column:content;type:text;not null;default:''" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_chat_message_node_created,priority:2" json:"created_at"`
}

func (chatMessageRow) TableName() string { return "chat_message" }

func nodeRowFrom(node *entities.ChatNode) *chatNodeRow {
	return &chatNodeRow{
		ID:        node.ID().String(),
		OwnerID:   node.OwnerID().String(),
		Title:     node.Title(),
		CreatedAt: node.CreatedAt().UTC(),
	}
}

func messageRowFrom(msg *entities.Message) *chatMessageRow {
	return &chatMessageRow{
		ID:        msg.ID(),
		NodeID:    msg.NodeID().String(),
		Role:      msg.Role().String(),
		Content:   msg.Content(),
		CreatedAt: msg.CreatedAt().UTC(),
	}
}

func (r *chatMessageRow) toEntity() (*entities.Message, error) {
	role, err := valueobjects.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructMessage(r.ID, valueobjects.PersistedID(r.NodeID), role, r.Content, r.CreatedAt)
}
