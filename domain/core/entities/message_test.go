package entities

import (
	"testing"
	"time"

	"canvaschat/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructMessage(t *testing.T) {
	now := time.Now()

	msg, err := ReconstructMessage("m1", "node-1", valueobjects.RoleAssistant, "a1", now)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID())
	assert.Equal(t, valueobjects.PersistedID("node-1"), msg.NodeID())
	assert.Equal(t, valueobjects.ChatMessage{Role: valueobjects.RoleAssistant, Content: "a1"}, msg.ToChatMessage())

	_, err = ReconstructMessage("m2", "", valueobjects.RoleUser, "x", now)
	assert.Error(t, err)

	_, err = ReconstructMessage("m3", "node-1", valueobjects.Role("tool"), "x", now)
	assert.Error(t, err)
}

func TestSortByCreatedAtIsStable(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, offset time.Duration) *Message {
		msg, err := ReconstructMessage(id, "n", valueobjects.RoleUser, id, base.Add(offset))
		require.NoError(t, err)
		return msg
	}

	messages := []*Message{
		mk("late", 2*time.Second),
		mk("tie-first", time.Second),
		mk("early", 0),
		mk("tie-second", time.Second),
	}

	SortByCreatedAt(messages)

	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID()
	}
	assert.Equal(t, []string{"early", "tie-first", "tie-second", "late"}, ids)
}

func TestChatNodeOwnership(t *testing.T) {
	node, err := ReconstructChatNode("n1", "u1", "Brainstorm", time.Now())
	require.NoError(t, err)

	assert.True(t, node.IsOwnedBy("u1"))
	assert.False(t, node.IsOwnedBy("u2"))
	assert.Equal(t, "Brainstorm", node.Title())

	_, err = ReconstructChatNode("n2", "", "", time.Now())
	assert.Error(t, err)
}
