package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"canvaschat/application/ports"
	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
	"canvaschat/pkg/utils"

	"github.com/google/uuid"
)

// SeedDocument holds chat data for offline runs
type SeedDocument struct {
	Nodes    []SeedNode    `json:"nodes" validate:"dive"`
	Messages []SeedMessage `json:"messages" validate:"dive"`
}

// SeedNode is a materialized node in a seed file
type SeedNode struct {
	ID        string    `json:"id" validate:"required"`
	OwnerID   string    `json:"owner" validate:"required"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SeedMessage is a stored message in a seed file
type SeedMessage struct {
	ID        string    `json:"id,omitempty"`
	NodeID    string    `json:"nodeId" validate:"required"`
	Role      string    `json:"role" validate:"required,oneof=system user assistant"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// Seed loads the seed file at path into seeder and returns what it wrote
func Seed(ctx context.Context, path string, seeder ports.ChatSeeder) (nodes, messages int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var doc SeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, 0, pkgerrors.NewValidationError("malformed seed document").WithCause(err)
	}
	if err := utils.ValidateStruct(doc); err != nil {
		return 0, 0, err
	}

	for _, n := range doc.Nodes {
		node, err := entities.ReconstructChatNode(
			valueobjects.PersistedID(n.ID), valueobjects.UserID(n.OwnerID), n.Title, n.CreatedAt,
		)
		if err != nil {
			return nodes, messages, pkgerrors.Wrapf(err, "seed node %s", n.ID)
		}
		if err := seeder.SaveNode(ctx, node); err != nil {
			return nodes, messages, err
		}
		nodes++
	}

	for _, m := range doc.Messages {
		role, err := valueobjects.ParseRole(m.Role)
		if err != nil {
			return nodes, messages, pkgerrors.Wrapf(err, "seed message %s", m.ID)
		}
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		msg, err := entities.ReconstructMessage(id, valueobjects.PersistedID(m.NodeID), role, m.Content, m.CreatedAt)
		if err != nil {
			return nodes, messages, pkgerrors.Wrapf(err, "seed message %s", id)
		}
		if err := seeder.SaveMessage(ctx, msg); err != nil {
			return nodes, messages, err
		}
		messages++
	}

	return nodes, messages, nil
}
