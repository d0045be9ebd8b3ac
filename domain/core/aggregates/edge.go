package aggregates

import (
	"github.com/google/uuid"

	"canvaschat/domain/core/valueobjects"
)

// Edge is a user-drawn connection on the canvas. From feeds context into To.
type Edge struct {
	ID   string               `json:"id"`
	From valueobjects.NodeRef `json:"from"`
	To   valueobjects.NodeRef `json:"to"`
}

// NewEdge creates an edge with a random ID
func NewEdge(from, to valueobjects.NodeRef) Edge {
	return Edge{
		ID:   NewEdgeID(),
		From: from,
		To:   to,
	}
}

// NewEdgeID creates a new random edge identifier
func NewEdgeID() string {
	return uuid.New().String()
}

// IsSelfLoop reports whether the edge points back at its own source
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}
