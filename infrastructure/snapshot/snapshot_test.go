package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	"canvaschat/infrastructure/persistence/memory"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const canvasJSON = `{
  "edges": [
    {"id": "e1", "from": "n1", "to": "n2"},
    {"from": "n2", "to": "n3"}
  ],
  "ids": {"n1": "p1", "n2": "p2"}
}`

func TestDecode(t *testing.T) {
	snap, err := Decode(strings.NewReader(canvasJSON))
	require.NoError(t, err)

	edges := snap.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "e1", edges[0].ID)
	assert.NotEmpty(t, edges[1].ID)
	assert.Equal(t, valueobjects.NodeRef("n3"), edges[1].To)

	id, ok := snap.IDs().Persisted("n2")
	assert.True(t, ok)
	assert.Equal(t, valueobjects.PersistedID("p2"), id)
}

func TestDecode_IDsPresence(t *testing.T) {
	withoutIDs, err := Decode(strings.NewReader(`{"edges": [{"from": "a", "to": "b"}]}`))
	require.NoError(t, err)
	assert.Nil(t, withoutIDs.IDs())

	emptyIDs, err := Decode(strings.NewReader(`{"edges": [{"from": "a", "to": "b"}], "ids": {}}`))
	require.NoError(t, err)
	require.NotNil(t, emptyIDs.IDs())
	assert.Equal(t, 0, emptyIDs.IDs().Len())
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"edges": [`},
		{name: "missing endpoint", doc: `{"edges": [{"from": "a"}]}`},
		{name: "id used twice", doc: `{"ids": {"a": "p1", "b": "p1"}}`},
		{name: "empty persisted id", doc: `{"ids": {"a": ""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "nodes": [{"id": "p1", "owner": "u1", "createdAt": "2024-01-01T09:00:00Z"}],
  "messages": [
    {"nodeId": "p1", "role": "user", "content": "q1", "createdAt": "2024-01-01T09:00:01Z"},
    {"nodeId": "p1", "role": "assistant", "content": "a1", "createdAt": "2024-01-01T09:00:02Z"}
  ]
}`), 0o644))

	store := memory.NewInMemoryChatStore()
	nodes, messages, err := Seed(context.Background(), path, store)
	require.NoError(t, err)
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 2, messages)

	owners, err := store.GetOwners(context.Background(), []valueobjects.PersistedID{"p1"})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.UserID("u1"), owners["p1"])
}

func TestSeed_InvalidRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "messages": [{"nodeId": "p1", "role": "tool", "content": "x", "createdAt": "2024-01-01T09:00:01Z"}]
}`), 0o644))

	_, _, err := Seed(context.Background(), path, memory.NewInMemoryChatStore())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestWatcher_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	require.NoError(t, os.WriteFile(path, []byte(canvasJSON), 0o644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	changed := make(chan *aggregates.Snapshot, 4)
	w.OnChange(func(s *aggregates.Snapshot) {
		select {
		case changed <- s:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	assert.Equal(t, 2, w.Current().EdgeCount())

	// invalid content is ignored
	require.NoError(t, os.WriteFile(path, []byte(`{"edges": [{"from": ""}]}`), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, w.Current().EdgeCount())

	require.NoError(t, os.WriteFile(path, []byte(`{"edges": [{"from": "a", "to": "b"}]}`), 0o644))

	select {
	case snap := <-changed:
		assert.Equal(t, 1, snap.EdgeCount())
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot was not reloaded")
	}
	assert.Equal(t, 1, w.Current().EdgeCount())
}

func TestWatcher_NoReloadAfterStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	require.NoError(t, os.WriteFile(path, []byte(canvasJSON), 0o644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)

	calls := 0
	w.OnChange(func(*aggregates.Snapshot) { calls++ })
	w.Start()
	w.Stop()
	w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"edges": [{"from": "a", "to": "b"}]}`), 0o644))
	// a debounce timer that fires late lands here
	w.reload()

	assert.Equal(t, 0, calls)
	assert.Equal(t, 2, w.Current().EdgeCount())
}

func TestWatcher_HandlersDoNotOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	require.NoError(t, os.WriteFile(path, []byte(canvasJSON), 0o644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	active, maxActive, calls := 0, 0, 0
	w.OnChange(func(*aggregates.Snapshot) {
		mu.Lock()
		active++
		calls++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reload()
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, maxActive)
}
