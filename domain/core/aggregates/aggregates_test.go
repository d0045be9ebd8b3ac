package aggregates

import (
	"testing"

	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDIndex_Bind(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(x *IDIndex)
		ref     valueobjects.NodeRef
		id      valueobjects.PersistedID
		wantErr bool
	}{
		{
			name: "new pair",
			ref:  "r1",
			id:   "p1",
		},
		{
			name:  "identical pair is a no-op",
			setup: func(x *IDIndex) { _ = x.Bind("r1", "p1") },
			ref:   "r1",
			id:    "p1",
		},
		{
			name:    "ref already bound elsewhere",
			setup:   func(x *IDIndex) { _ = x.Bind("r1", "p1") },
			ref:     "r1",
			id:      "p2",
			wantErr: true,
		},
		{
			name:    "id already bound elsewhere",
			setup:   func(x *IDIndex) { _ = x.Bind("r1", "p1") },
			ref:     "r2",
			id:      "p1",
			wantErr: true,
		},
		{
			name:    "empty ref",
			ref:     "",
			id:      "p1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewIDIndex()
			if tt.setup != nil {
				tt.setup(x)
			}

			err := x.Bind(tt.ref, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)

			id, ok := x.Persisted(tt.ref)
			assert.True(t, ok)
			assert.Equal(t, tt.id, id)

			ref, ok := x.Ref(tt.id)
			assert.True(t, ok)
			assert.Equal(t, tt.ref, ref)
			assert.Equal(t, 1, x.Len())
		})
	}
}

func TestIDIndex_NilIsEmpty(t *testing.T) {
	var x *IDIndex

	_, ok := x.Persisted("r1")
	assert.False(t, ok)
	_, ok = x.Ref("p1")
	assert.False(t, ok)
	assert.Equal(t, 0, x.Len())
	assert.Empty(t, x.ToMap())
	assert.Nil(t, x.Clone())
}

func TestNewSnapshot_CopiesInputs(t *testing.T) {
	edges := []Edge{{ID: "e1", From: "A", To: "B"}}
	ids, err := NewIDIndexFromMap(map[valueobjects.NodeRef]valueobjects.PersistedID{"A": "pa"})
	require.NoError(t, err)

	snap, err := NewSnapshot(edges, ids)
	require.NoError(t, err)

	edges[0].From = "Z"
	require.NoError(t, ids.Bind("B", "pb"))

	assert.Equal(t, valueobjects.NodeRef("A"), snap.Edges()[0].From)
	assert.Equal(t, 1, snap.IDs().Len())

	got := snap.Edges()
	got[0].To = "Q"
	assert.Equal(t, valueobjects.NodeRef("B"), snap.Edges()[0].To)
}

func TestNewSnapshot_KeepsMissingIndexDistinctFromEmpty(t *testing.T) {
	withoutIndex, err := NewSnapshot(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, withoutIndex.IDs())

	withEmpty, err := NewSnapshot(nil, NewIDIndex())
	require.NoError(t, err)
	require.NotNil(t, withEmpty.IDs())
	assert.Equal(t, 0, withEmpty.IDs().Len())
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edges   []Edge
		wantErr bool
	}{
		{name: "empty", edges: nil},
		{name: "cycle", edges: []Edge{{ID: "1", From: "A", To: "B"}, {ID: "2", From: "B", To: "A"}}},
		{name: "self loop", edges: []Edge{{From: "A", To: "A"}}},
		{name: "missing endpoint", edges: []Edge{{ID: "1", From: "", To: "B"}}, wantErr: true},
		{name: "duplicate edge id", edges: []Edge{{ID: "1", From: "A", To: "B"}, {ID: "1", From: "B", To: "C"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.edges, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSnapshot_Refs(t *testing.T) {
	ids, err := NewIDIndexFromMap(map[valueobjects.NodeRef]valueobjects.PersistedID{
		"lonely": "p0",
		"A":      "pa",
	})
	require.NoError(t, err)

	snap, err := NewSnapshot([]Edge{NewEdge("A", "B"), NewEdge("B", "C")}, ids)
	require.NoError(t, err)

	assert.Equal(t, []valueobjects.NodeRef{"A", "B", "C", "lonely"}, snap.Refs())
	assert.Equal(t, 2, snap.EdgeCount())
}
