package services

import (
	"testing"

	"canvaschat/domain/config"
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(t *testing.T, pairs ...string) *aggregates.IDIndex {
	t.Helper()
	idx := aggregates.NewIDIndex()
	for i := 0; i+1 < len(pairs); i += 2 {
		require.NoError(t, idx.Bind(valueobjects.NodeRef(pairs[i]), valueobjects.PersistedID(pairs[i+1])))
	}
	return idx
}

func persisted(values ...string) []valueobjects.PersistedID {
	out := make([]valueobjects.PersistedID, len(values))
	for i, v := range values {
		out[i] = valueobjects.PersistedID(v)
	}
	return out
}

func TestBuildChain(t *testing.T) {
	tests := []struct {
		name               string
		current            string
		edges              []aggregates.Edge
		ids                []string
		want               []valueobjects.PersistedID
		wantUnmaterialized []valueobjects.NodeRef
	}{
		{
			name:    "no edges yields the current node",
			current: "p-b",
			want:    persisted("p-b"),
		},
		{
			name:    "empty current id",
			current: "",
			edges:   edges("A", "B"),
			want:    persisted(),
		},
		{
			name:    "mapped ancestors",
			current: "p-c",
			edges:   edges("A", "B", "B", "C"),
			ids:     []string{"A", "p-a", "B", "p-b", "C", "p-c"},
			want:    persisted("p-a", "p-b", "p-c"),
		},
		{
			name:               "unmapped ancestor is dropped",
			current:            "p-c",
			edges:              edges("A", "B", "B", "C"),
			ids:                []string{"B", "p-b", "C", "p-c"},
			want:               persisted("p-b", "p-c"),
			wantUnmaterialized: refs("A"),
		},
		{
			name:    "direct id mode without index",
			current: "C",
			edges:   edges("A", "B", "B", "C"),
			want:    persisted("A", "B", "C"),
		},
		{
			name:               "empty index drops every ancestor",
			current:            "C",
			edges:              edges("A", "B", "B", "C"),
			ids:                []string{},
			want:               persisted("C"),
			wantUnmaterialized: refs("A", "B"),
		},
		{
			name:    "unknown current id falls back to ref",
			current: "C",
			edges:   edges("A", "C"),
			ids:     []string{"A", "p-a"},
			want:    persisted("p-a", "C"),
		},
		{
			name:    "cycle through current node",
			current: "p-a",
			edges:   edges("A", "B", "B", "A"),
			ids:     []string{"A", "p-a", "B", "p-b"},
			want:    persisted("p-b", "p-a"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idx *aggregates.IDIndex
			if tt.ids != nil {
				idx = ids(t, tt.ids...)
			}

			chain := BuildChain(valueobjects.PersistedID(tt.current), tt.edges, idx)

			assert.Equal(t, tt.want, chain.IDs)
			assert.Equal(t, tt.wantUnmaterialized, chain.Unmaterialized)
		})
	}
}

func TestBuildChain_NoDuplicatesAndCurrentLast(t *testing.T) {
	g := edges("A", "C", "B", "C", "C", "D", "D", "A", "A", "D")
	idx := ids(t, "A", "pa", "B", "pb", "C", "pc", "D", "pd")

	for _, current := range persisted("pa", "pb", "pc", "pd") {
		chain := BuildChain(current, g, idx)

		last, ok := chain.Current()
		require.True(t, ok)
		assert.Equal(t, current, last)

		seen := make(map[valueobjects.PersistedID]bool)
		for _, id := range chain.IDs {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}

func TestBuildChainFromRef(t *testing.T) {
	g := edges("A", "B", "B", "C")

	t.Run("mapped current", func(t *testing.T) {
		chain := BuildChainFromRef("C", g, ids(t, "A", "pa", "B", "pb", "C", "pc"))
		assert.Equal(t, persisted("pa", "pb", "pc"), chain.IDs)
	})

	t.Run("unmapped current uses the ref", func(t *testing.T) {
		chain := BuildChainFromRef("C", g, ids(t, "A", "pa", "B", "pb"))
		assert.Equal(t, persisted("pa", "pb", "C"), chain.IDs)
	})

	t.Run("no edges", func(t *testing.T) {
		chain := BuildChainFromRef("C", nil, ids(t, "C", "pc"))
		assert.Equal(t, persisted("pc"), chain.IDs)
	})

	t.Run("empty ref", func(t *testing.T) {
		chain := BuildChainFromRef("", g, nil)
		assert.True(t, chain.IsEmpty())
	})

	t.Run("matches persisted form", func(t *testing.T) {
		idx := ids(t, "A", "pa", "B", "pb", "C", "pc")
		assert.Equal(t, BuildChain("pc", g, idx), BuildChainFromRef("C", g, idx))
	})
}

func TestChainService_Limit(t *testing.T) {
	g := edges("A", "B", "B", "C", "C", "D")
	idx := ids(t, "A", "pa", "B", "pb", "C", "pc", "D", "pd")
	snapshot, err := aggregates.NewSnapshot(g, idx)
	require.NoError(t, err)

	tests := []struct {
		name        string
		max         int
		wantIDs     []valueobjects.PersistedID
		wantTrimmed []valueobjects.PersistedID
	}{
		{name: "unlimited", max: 0, wantIDs: persisted("pa", "pb", "pc", "pd")},
		{name: "fits", max: 4, wantIDs: persisted("pa", "pb", "pc", "pd")},
		{name: "trims oldest", max: 2, wantIDs: persisted("pc", "pd"), wantTrimmed: persisted("pa", "pb")},
		{name: "keeps current", max: 1, wantIDs: persisted("pd"), wantTrimmed: persisted("pa", "pb", "pc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultDomainConfig()
			cfg.MaxChainLength = tt.max
			svc := NewChainService(cfg)

			chain := svc.ForSnapshot(snapshot, "pd")
			assert.Equal(t, tt.wantIDs, chain.IDs)
			assert.Equal(t, tt.wantTrimmed, chain.Trimmed)

			assert.Equal(t, chain, svc.ForSnapshotRef(snapshot, "D"))
		})
	}
}

func TestChainService_EmptyIndexSnapshot(t *testing.T) {
	snapshot, err := aggregates.NewSnapshot(edges("A", "B", "B", "C"), aggregates.NewIDIndex())
	require.NoError(t, err)

	chain := NewChainService(nil).ForSnapshotRef(snapshot, "C")
	assert.Equal(t, persisted("C"), chain.IDs)
	assert.Equal(t, refs("A", "B"), chain.Unmaterialized)
}

func TestChainService_CheckSnapshot(t *testing.T) {
	snapshot, err := aggregates.NewSnapshot(edges("A", "B", "B", "C"), nil)
	require.NoError(t, err)

	cfg := config.DefaultDomainConfig()
	cfg.MaxEdgesPerSnapshot = 1
	err = NewChainService(cfg).CheckSnapshot(snapshot)
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, map[string]interface{}{"edges": 2, "limit": 1}, appErr.Details)

	cfg.MaxEdgesPerSnapshot = 2
	assert.NoError(t, NewChainService(cfg).CheckSnapshot(snapshot))
}
