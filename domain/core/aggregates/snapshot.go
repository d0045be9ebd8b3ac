package aggregates

import (
	"fmt"
	"sort"

	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
)

// Snapshot is an immutable view of the canvas at one point in time.
// Traversals read from it; UI mutations produce a new snapshot.
type Snapshot struct {
	edges []Edge
	ids   *IDIndex
}

// NewSnapshot copies edges and ids so later changes by the caller
// cannot leak into a traversal.
func NewSnapshot(edges []Edge, ids *IDIndex) (*Snapshot, error) {
	s := &Snapshot{
		edges: append([]Edge(nil), edges...),
		ids:   ids.Clone(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Edges returns a copy of the edge arena in input order
func (s *Snapshot) Edges() []Edge {
	return append([]Edge(nil), s.edges...)
}

// IDs returns the id correspondence of the snapshot, or nil when the snapshot
// was built without one. The index must be treated as read-only.
func (s *Snapshot) IDs() *IDIndex {
	return s.ids
}

// EdgeCount returns the number of edges
func (s *Snapshot) EdgeCount() int {
	return len(s.edges)
}

// Refs returns every node ref on an edge in first-seen order,
// followed by index-only refs sorted lexically.
func (s *Snapshot) Refs() []valueobjects.NodeRef {
	seen := make(map[valueobjects.NodeRef]bool)
	var refs []valueobjects.NodeRef
	add := func(ref valueobjects.NodeRef) {
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	for _, e := range s.edges {
		add(e.From)
		add(e.To)
	}
	indexed := make([]valueobjects.NodeRef, 0, s.ids.Len())
	for ref := range s.ids.byRef {
		indexed = append(indexed, ref)
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i] < indexed[j] })
	for _, ref := range indexed {
		add(ref)
	}
	return refs
}

// Validate ensures snapshot invariants.
// Cycles and self loops are allowed; traversal handles them.
func (s *Snapshot) Validate() error {
	edgeIDs := make(map[string]bool, len(s.edges))
	for i, e := range s.edges {
		if e.From.IsZero() || e.To.IsZero() {
			return pkgerrors.NewValidationError(fmt.Sprintf("edge %d has an empty endpoint", i))
		}
		if e.ID == "" {
			continue
		}
		if edgeIDs[e.ID] {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate edge id %s", e.ID))
		}
		edgeIDs[e.ID] = true
	}
	return nil
}
