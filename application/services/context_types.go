package services

import (
	"canvaschat/domain/core/valueobjects"
	domainservices "canvaschat/domain/services"
)

// ExclusionReason explains why a node contributed no messages
type ExclusionReason string

const (
	ExclusionNotFound      ExclusionReason = "not_found"
	ExclusionOwnerMismatch ExclusionReason = "owner_mismatch"
)

// Exclusion records a node that was silently left out of a context
type Exclusion struct {
	NodeID valueobjects.PersistedID `json:"nodeId"`
	Reason ExclusionReason          `json:"reason"`
}

// Aggregation is the result of reading the messages of a node set
type Aggregation struct {
	Messages []valueobjects.ChatMessage `json:"messages"`
	Excluded []Exclusion                `json:"excluded,omitempty"`
}

// AssembledContext is the provider-ready message list plus diagnostics
type AssembledContext struct {
	Chain               domainservices.Chain       `json:"chain"`
	Messages            []valueobjects.ChatMessage `json:"messages"`
	Excluded            []Exclusion                `json:"excluded,omitempty"`
	DuplicateSuppressed bool                       `json:"duplicateSuppressed"`
}

// ExcludedIDs returns the ids of excluded nodes in exclusion order
func (a *Aggregation) ExcludedIDs() []valueobjects.PersistedID {
	ids := make([]valueobjects.PersistedID, len(a.Excluded))
	for i, e := range a.Excluded {
		ids[i] = e.NodeID
	}
	return ids
}
