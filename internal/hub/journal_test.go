package hub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/types"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	mr := miniredis.RunT(t)

	j, err := NewJournal(context.Background(), JournalConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalReplayPreservesOrder(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	first := types.NewMessage("agent1", "first")
	second := types.NewMessage("agent2", "second")
	require.NoError(t, j.Publish(ctx, conversation.Event{
		Type: conversation.EventMessageAdded, ConversationID: "c1", Message: &first,
	}))
	require.NoError(t, j.Publish(ctx, conversation.Event{
		Type: conversation.EventMessageAdded, ConversationID: "c1", Message: &second,
	}))
	require.NoError(t, j.Publish(ctx, conversation.Event{
		Type: conversation.EventPhaseChanged, ConversationID: "c1", Phase: types.PhaseExploration,
	}))

	events, err := j.Replay(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Message.Content)
	assert.Equal(t, "second", events[1].Message.Content)
	assert.Equal(t, conversation.EventPhaseChanged, events[2].Type)
}

func TestJournalIsScopedPerConversation(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Publish(ctx, conversation.Event{
		Type: conversation.EventStatusChanged, ConversationID: "c1", Status: conversation.StatusActive,
	}))

	events, err := j.Replay(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJournalEntriesExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	j, err := NewJournal(context.Background(), JournalConfig{
		Addr: mr.Addr(),
		TTL:  time.Minute,
	}, nil)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Publish(context.Background(), conversation.Event{
		Type: conversation.EventStatusChanged, ConversationID: "c1", Status: conversation.StatusActive,
	}))

	mr.FastForward(2 * time.Minute)

	events, err := j.Replay(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJournalConnectFailure(t *testing.T) {
	_, err := NewJournal(context.Background(), JournalConfig{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
}
