package memory

import (
	"context"
	"testing"
	"time"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryChatStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryChatStore()

	node, err := entities.ReconstructChatNode("n1", "u1", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.SaveNode(ctx, node))

	msg, err := entities.ReconstructMessage("m1", "n1", valueobjects.RoleUser, "hi", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.SaveMessage(ctx, msg))

	owners, err := store.GetOwners(ctx, []valueobjects.PersistedID{"n1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[valueobjects.PersistedID]valueobjects.UserID{"n1": "u1"}, owners)

	messages, err := store.ListByNodes(ctx, []valueobjects.PersistedID{"n1", "missing"})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Content())
}

func TestInMemoryChatStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInMemoryChatStore().GetOwners(ctx, []valueobjects.PersistedID{"n1"})
	assert.ErrorIs(t, err, context.Canceled)
}
