package services

import (
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
)

// FindUpstream returns every node that can reach start by following edges
// forward, closest ancestor last.
//
// The order is breadth-first discovery order reversed, not creation order.
// start is never part of the result, even when a cycle leads back to it.
func FindUpstream(start valueobjects.NodeRef, edges []aggregates.Edge) []valueobjects.NodeRef {
	if len(edges) == 0 {
		return []valueobjects.NodeRef{}
	}

	reverse := BuildReverseIndex(edges)

	visited := map[valueobjects.NodeRef]bool{start: true}
	queue := []valueobjects.NodeRef{start}
	var discovered []valueobjects.NodeRef

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, source := range reverse[current] {
			if visited[source] {
				continue
			}
			visited[source] = true
			discovered = append(discovered, source)
			queue = append(queue, source)
		}
	}

	result := make([]valueobjects.NodeRef, len(discovered))
	for i, ref := range discovered {
		result[len(discovered)-1-i] = ref
	}
	return result
}
