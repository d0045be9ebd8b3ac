package services

import (
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
)

// BuildReverseIndex maps every edge target to the sources that feed it.
// Sources are listed in edge input order; duplicates are kept.
func BuildReverseIndex(edges []aggregates.Edge) map[valueobjects.NodeRef][]valueobjects.NodeRef {
	index := make(map[valueobjects.NodeRef][]valueobjects.NodeRef)
	for _, edge := range edges {
		index[edge.To] = append(index[edge.To], edge.From)
	}
	return index
}
