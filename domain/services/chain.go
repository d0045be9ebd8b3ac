package services

import (
	"fmt"

	"canvaschat/domain/config"
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
)

// Chain is the ordered list of persisted node ids whose messages form the
// prompt context for a node. Ancestors come first, the current node last.
type Chain struct {
	IDs []valueobjects.PersistedID `json:"ids"`
	// Unmaterialized lists ancestors with no persisted id. They contribute nothing.
	Unmaterialized []valueobjects.NodeRef `json:"unmaterialized,omitempty"`
	// Trimmed lists ancestors dropped by a chain length limit, oldest first.
	Trimmed []valueobjects.PersistedID `json:"trimmed,omitempty"`
}

// Len returns the number of ids in the chain
func (c Chain) Len() int {
	return len(c.IDs)
}

// IsEmpty reports whether the chain has no ids
func (c Chain) IsEmpty() bool {
	return len(c.IDs) == 0
}

// Current returns the id of the node the chain was built for
func (c Chain) Current() (valueobjects.PersistedID, bool) {
	if len(c.IDs) == 0 {
		return "", false
	}
	return c.IDs[len(c.IDs)-1], true
}

// BuildChain builds the context chain of a persisted node.
//
// When ids is nil, refs and persisted ids are treated as the same namespace.
// Otherwise currentID is looked up in the index, falling back to using it as
// a ref, and ancestors without a mapping are dropped. An empty index maps
// nothing, so every ancestor is dropped.
func BuildChain(currentID valueobjects.PersistedID, edges []aggregates.Edge, ids *aggregates.IDIndex) Chain {
	if currentID.IsZero() {
		return Chain{IDs: []valueobjects.PersistedID{}}
	}
	if len(edges) == 0 {
		return Chain{IDs: []valueobjects.PersistedID{currentID}}
	}

	ref, ok := ids.Ref(currentID)
	if !ok {
		ref = valueobjects.NodeRef(currentID)
	}

	return assembleChain(currentID, FindUpstream(ref, edges), ids)
}

// BuildChainFromRef builds the context chain starting from a canvas ref.
// The current node's id is its mapping when one exists, else the ref itself.
func BuildChainFromRef(current valueobjects.NodeRef, edges []aggregates.Edge, ids *aggregates.IDIndex) Chain {
	if current.IsZero() {
		return Chain{IDs: []valueobjects.PersistedID{}}
	}

	currentID, ok := ids.Persisted(current)
	if !ok {
		currentID = valueobjects.PersistedID(current)
	}
	if len(edges) == 0 {
		return Chain{IDs: []valueobjects.PersistedID{currentID}}
	}

	return assembleChain(currentID, FindUpstream(current, edges), ids)
}

func assembleChain(currentID valueobjects.PersistedID, ancestors []valueobjects.NodeRef, ids *aggregates.IDIndex) Chain {
	directIDs := ids == nil

	chain := Chain{IDs: make([]valueobjects.PersistedID, 0, len(ancestors)+1)}
	seen := map[valueobjects.PersistedID]bool{currentID: true}

	for _, ancestor := range ancestors {
		var id valueobjects.PersistedID
		if directIDs {
			id = valueobjects.PersistedID(ancestor)
		} else {
			mapped, ok := ids.Persisted(ancestor)
			if !ok {
				chain.Unmaterialized = append(chain.Unmaterialized, ancestor)
				continue
			}
			id = mapped
		}

		if seen[id] {
			continue
		}
		seen[id] = true
		chain.IDs = append(chain.IDs, id)
	}

	chain.IDs = append(chain.IDs, currentID)
	return chain
}

// ChainService applies domain limits on top of chain construction
type ChainService struct {
	config *config.DomainConfig
}

// NewChainService creates a new chain service
func NewChainService(cfg *config.DomainConfig) *ChainService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ChainService{config: cfg}
}

// ForSnapshot builds the chain of a persisted node within a snapshot
func (s *ChainService) ForSnapshot(snapshot *aggregates.Snapshot, currentID valueobjects.PersistedID) Chain {
	return s.limit(BuildChain(currentID, snapshot.Edges(), snapshot.IDs()))
}

// ForSnapshotRef builds the chain of a canvas ref within a snapshot
func (s *ChainService) ForSnapshotRef(snapshot *aggregates.Snapshot, current valueobjects.NodeRef) Chain {
	return s.limit(BuildChainFromRef(current, snapshot.Edges(), snapshot.IDs()))
}

// limit trims the oldest ancestors so the chain fits MaxChainLength.
// The current node is always kept.
func (s *ChainService) limit(chain Chain) Chain {
	maxLen := s.config.MaxChainLength
	if maxLen <= 0 || len(chain.IDs) <= maxLen {
		return chain
	}

	cut := len(chain.IDs) - maxLen
	chain.Trimmed = append([]valueobjects.PersistedID(nil), chain.IDs[:cut]...)
	chain.IDs = append([]valueobjects.PersistedID(nil), chain.IDs[cut:]...)
	return chain
}

// CheckSnapshot rejects snapshots larger than the configured limit
func (s *ChainService) CheckSnapshot(snapshot *aggregates.Snapshot) error {
	if s.config.MaxEdgesPerSnapshot > 0 && snapshot.EdgeCount() > s.config.MaxEdgesPerSnapshot {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("snapshot has %d edges, limit is %d", snapshot.EdgeCount(), s.config.MaxEdgesPerSnapshot),
		).WithDetails(map[string]interface{}{
			"edges": snapshot.EdgeCount(),
			"limit": s.config.MaxEdgesPerSnapshot,
		})
	}
	return nil
}

// Config returns the domain limits in effect
func (s *ChainService) Config() *config.DomainConfig {
	return s.config
}
