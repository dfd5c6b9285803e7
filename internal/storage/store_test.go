package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	store := NewStore(db, nil)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreConversationLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateConversation(ctx, "c1", "Pick a stack", "active", "initialization"))

	rec, err := store.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Pick a stack", rec.GoalDescription)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "initialization", rec.Phase)

	require.NoError(t, store.UpdatePhase(ctx, "c1", "exploration"))
	require.NoError(t, store.UpdateStatus(ctx, "c1", "completed"))
	require.NoError(t, store.SetFinalSummary(ctx, "c1", "Proposal 'X' has been approved with 3 votes."))

	rec, err = store.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "exploration", rec.Phase)
	assert.Equal(t, "completed", rec.Status)
	assert.Contains(t, rec.FinalSummary, "approved with 3 votes")
}

func TestStoreGetUnknownConversation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConversation(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestStoreUpdateUnknownConversation(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateStatus(context.Background(), "missing", "failed")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestStoreMessagesKeepAppendOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateConversation(ctx, "c1", "Goal", "active", "initialization"))

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		require.NoError(t, store.AppendMessage(ctx, "c1", types.NewMessage("agent1", c)))
	}

	msgs, err := store.Messages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, c := range contents {
		assert.Equal(t, i, msgs[i].Seq)
		assert.Equal(t, c, msgs[i].Content)
	}

	rec, err := store.GetConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, rec.Messages, 3)
	assert.Equal(t, "first", rec.Messages[0].Content)
}

func TestStoreDeleteConversation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateConversation(ctx, "c1", "Goal", "completed", "completed"))
	require.NoError(t, store.AppendMessage(ctx, "c1", types.NewMessage("agent1", "hello")))

	require.NoError(t, store.DeleteConversation(ctx, "c1"))

	_, err := store.GetConversation(ctx, "c1")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	msgs, err := store.Messages(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	err = store.DeleteConversation(ctx, "c1")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestSinkPersistsEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateConversation(ctx, "c1", "Goal", "active", "initialization"))

	sink := NewSink(store)
	msg := types.NewMessage("agent1", "hello")
	events := []conversation.Event{
		{Type: conversation.EventMessageAdded, ConversationID: "c1", Message: &msg},
		{Type: conversation.EventPhaseChanged, ConversationID: "c1", Phase: types.PhaseExploration},
		{Type: conversation.EventStatusChanged, ConversationID: "c1", Status: conversation.StatusCompleted},
		{Type: conversation.EventDecisionReached, ConversationID: "c1", Decision: "done"},
	}
	for _, ev := range events {
		require.NoError(t, sink.Publish(ctx, ev))
	}

	rec, err := store.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, string(types.PhaseExploration), rec.Phase)
	assert.Equal(t, string(conversation.StatusCompleted), rec.Status)
	assert.Equal(t, "done", rec.FinalSummary)
	require.Len(t, rec.Messages, 1)
	assert.Equal(t, "hello", rec.Messages[0].Content)
}

func TestStoreSurfacesDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM \"conversations\"").
		WillReturnError(assert.AnError)

	store := NewStore(db, nil)
	_, err = store.ListConversations(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrStorageError, types.GetErrorCode(err))
}
