package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
	"canvaschat/pkg/utils"
)

// Document is the on-disk form of a canvas snapshot
type Document struct {
	Edges []EdgeDocument    `json:"edges" validate:"dive"`
	IDs   map[string]string `json:"ids" validate:"dive,keys,required,endkeys,required"`
}

// EdgeDocument is one edge of a Document. A missing id is generated.
type EdgeDocument struct {
	ID   string `json:"id,omitempty"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Decode reads a snapshot document and builds an immutable snapshot
func Decode(r io.Reader) (*aggregates.Snapshot, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, pkgerrors.NewValidationError("malformed snapshot document").WithCause(err)
	}
	return doc.Snapshot()
}

// LoadFile decodes the snapshot stored at path
func LoadFile(path string) (*aggregates.Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.NewNotFoundError("snapshot file " + path).WithCause(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Snapshot validates the document and converts it
func (d Document) Snapshot() (*aggregates.Snapshot, error) {
	if err := utils.ValidateStruct(d); err != nil {
		return nil, err
	}

	edges := make([]aggregates.Edge, len(d.Edges))
	for i, e := range d.Edges {
		id := e.ID
		if id == "" {
			id = aggregates.NewEdgeID()
		}
		edges[i] = aggregates.Edge{
			ID:   id,
			From: valueobjects.NodeRef(e.From),
			To:   valueobjects.NodeRef(e.To),
		}
	}

	// an absent "ids" object means refs are persisted ids
	var ids *aggregates.IDIndex
	if d.IDs != nil {
		ids = aggregates.NewIDIndex()
	}
	for ref, id := range d.IDs {
		if err := ids.Bind(valueobjects.NodeRef(ref), valueobjects.PersistedID(id)); err != nil {
			return nil, err
		}
	}

	return aggregates.NewSnapshot(edges, ids)
}
