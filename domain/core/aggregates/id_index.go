package aggregates

import (
	"fmt"

	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
)

// IDIndex maps canvas refs to persisted ids in both directions.
// The two maps are always kept in sync; entries are create-once.
type IDIndex struct {
	byRef map[valueobjects.NodeRef]valueobjects.PersistedID
	byID  map[valueobjects.PersistedID]valueobjects.NodeRef
}

// NewIDIndex creates an empty index
func NewIDIndex() *IDIndex {
	return &IDIndex{
		byRef: make(map[valueobjects.NodeRef]valueobjects.PersistedID),
		byID:  make(map[valueobjects.PersistedID]valueobjects.NodeRef),
	}
}

// NewIDIndexFromMap builds an index from a ref -> persisted id map
func NewIDIndexFromMap(m map[valueobjects.NodeRef]valueobjects.PersistedID) (*IDIndex, error) {
	idx := NewIDIndex()
	for ref, id := range m {
		if err := idx.Bind(ref, id); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Bind records that ref was materialized as id.
// Re-binding the identical pair is a no-op; any other overlap is rejected.
func (x *IDIndex) Bind(ref valueobjects.NodeRef, id valueobjects.PersistedID) error {
	if ref.IsZero() || id.IsZero() {
		return pkgerrors.NewValidationError("id index entries require both a node ref and a persisted id")
	}

	existingID, refBound := x.byRef[ref]
	existingRef, idBound := x.byID[id]

	if refBound && idBound && existingID == id && existingRef == ref {
		return nil
	}
	if refBound {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("node ref %s is already bound to %s", ref, existingID),
		).WithCode("ID_INDEX_CONFLICT")
	}
	if idBound {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("persisted id %s is already bound to %s", id, existingRef),
		).WithCode("ID_INDEX_CONFLICT")
	}

	x.byRef[ref] = id
	x.byID[id] = ref
	return nil
}

// Persisted returns the persisted id for a ref
func (x *IDIndex) Persisted(ref valueobjects.NodeRef) (valueobjects.PersistedID, bool) {
	if x == nil {
		return "", false
	}
	id, ok := x.byRef[ref]
	return id, ok
}

// Ref returns the canvas ref a persisted id was materialized from
func (x *IDIndex) Ref(id valueobjects.PersistedID) (valueobjects.NodeRef, bool) {
	if x == nil {
		return "", false
	}
	ref, ok := x.byID[id]
	return ref, ok
}

// Len returns the number of bound pairs
func (x *IDIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byRef)
}

// ToMap returns a copy of the ref -> persisted id direction
func (x *IDIndex) ToMap() map[valueobjects.NodeRef]valueobjects.PersistedID {
	out := make(map[valueobjects.NodeRef]valueobjects.PersistedID, x.Len())
	if x == nil {
		return out
	}
	for ref, id := range x.byRef {
		out[ref] = id
	}
	return out
}

// Clone returns an independent copy of the index.
// A nil index clones to nil.
func (x *IDIndex) Clone() *IDIndex {
	if x == nil {
		return nil
	}
	clone := NewIDIndex()
	for ref, id := range x.byRef {
		clone.byRef[ref] = id
		clone.byID[id] = ref
	}
	return clone
}
