package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoraops/agora/types"
)

func TestServiceStartRunsConversationToCompletion(t *testing.T) {
	svc, err := NewService(ServiceConfig{
		Participants: func() ([]types.Contributor, error) { return fiveAgents(), nil },
	})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Choose a message broker")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Choose a message broker", orch.Goal())

	require.Eventually(t, func() bool {
		return orch.Status().Terminal()
	}, 2*time.Second, 5*time.Millisecond)

	svc.Wait()
	assert.Equal(t, types.PhaseCompleted, orch.Phase())
}

func TestServicePrepareRunsBeforeAnyEvent(t *testing.T) {
	var mu sync.Mutex
	var order []string

	svc, err := NewService(ServiceConfig{
		Participants: func() ([]types.Contributor, error) { return fiveAgents(), nil },
		Prepare: func(_ context.Context, id, goal string) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, "prepare:"+goal)
			require.NotEmpty(t, id)
			return nil
		},
		Sink: SinkFunc(func(_ context.Context, _ Event) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, "event")
			return nil
		}),
	})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), "Choose a message broker")
	require.NoError(t, err)
	svc.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, order)
	assert.Equal(t, "prepare:Choose a message broker", order[0])
	assert.Contains(t, order, "event")
}

func TestServicePrepareErrorAbortsStart(t *testing.T) {
	calls := 0
	svc, err := NewService(ServiceConfig{
		MaxConcurrent: 1,
		Participants:  func() ([]types.Contributor, error) { return fiveAgents(), nil },
		Prepare: func(_ context.Context, _, _ string) error {
			calls++
			if calls == 1 {
				return errors.New("db down")
			}
			return nil
		},
	})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), "Choose a message broker")
	require.ErrorContains(t, err, "db down")
	assert.Empty(t, svc.List())

	// The admission slot was released, so the next start succeeds.
	id, err := svc.Start(context.Background(), "Choose a message broker")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	svc.Wait()
}

func TestServiceShutdownCancelsWaitingRun(t *testing.T) {
	factory := func() ([]types.Contributor, error) {
		agents := fiveAgents()
		agents[0].(*scriptedAgent).contributeFn = func(_ context.Context, _ types.ConversationContext) (string, error) {
			return "QUESTION FOR USER: which region do we target?", nil
		}
		return agents, nil
	}
	svc, err := NewService(ServiceConfig{Participants: factory})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Pick a launch region")
	require.NoError(t, err)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return orch.Status() == StatusWaitingForUser
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
	assert.Equal(t, StatusFailed, orch.Status())
}

func TestServiceStartRejectsWhenSaturated(t *testing.T) {
	factory := func() ([]types.Contributor, error) {
		agents := fiveAgents()
		agents[0].(*scriptedAgent).contributeFn = func(_ context.Context, _ types.ConversationContext) (string, error) {
			return "QUESTION FOR USER: which region do we target?", nil
		}
		return agents, nil
	}
	svc, err := NewService(ServiceConfig{MaxConcurrent: 1, Participants: factory})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Pick a launch region")
	require.NoError(t, err)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return orch.Status() == StatusWaitingForUser
	}, 2*time.Second, 5*time.Millisecond)

	// Admission never queues; at capacity the caller fails immediately.
	_, err = svc.Start(context.Background(), "One too many")
	require.Error(t, err)
	assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))

	require.NoError(t, svc.SubmitUserMessage(context.Background(), id, "Start with EMEA."))
	svc.Wait()
}

func TestServiceGetUnknownConversation(t *testing.T) {
	svc, err := NewService(ServiceConfig{
		Participants: func() ([]types.Contributor, error) { return fiveAgents(), nil },
	})
	require.NoError(t, err)

	_, err = svc.Get("nope")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestServiceRemove(t *testing.T) {
	svc, err := NewService(ServiceConfig{
		Participants: func() ([]types.Contributor, error) { return fiveAgents(), nil },
	})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Choose a message broker")
	require.NoError(t, err)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return orch.Status().Terminal()
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, svc.Remove(id))
	_, err = svc.Get(id)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	err = svc.Remove(id)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestServiceRemoveActiveRunRefused(t *testing.T) {
	factory := func() ([]types.Contributor, error) {
		agents := fiveAgents()
		agents[0].(*scriptedAgent).contributeFn = func(_ context.Context, _ types.ConversationContext) (string, error) {
			return "QUESTION FOR USER: which region do we target?", nil
		}
		return agents, nil
	}
	svc, err := NewService(ServiceConfig{Participants: factory})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Pick a launch region")
	require.NoError(t, err)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return orch.Status() == StatusWaitingForUser
	}, 2*time.Second, 5*time.Millisecond)

	err = svc.Remove(id)
	assert.Equal(t, types.ErrConversationActive, types.GetErrorCode(err))

	require.NoError(t, svc.SubmitUserMessage(context.Background(), id, "Start with EMEA."))
	svc.Wait()
	require.NoError(t, svc.Remove(id))
}

func TestServiceRoutesUserMessageToWaitingRun(t *testing.T) {
	factory := func() ([]types.Contributor, error) {
		agents := fiveAgents()
		agents[0].(*scriptedAgent).contributeFn = func(_ context.Context, _ types.ConversationContext) (string, error) {
			return "QUESTION FOR USER: which region do we target?", nil
		}
		return agents, nil
	}
	svc, err := NewService(ServiceConfig{Participants: factory})
	require.NoError(t, err)

	id, err := svc.Start(context.Background(), "Pick a launch region")
	require.NoError(t, err)

	orch, err := svc.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return orch.Status() == StatusWaitingForUser
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, svc.SubmitUserMessage(context.Background(), id, "Start with EMEA."))
	svc.Wait()
	assert.True(t, orch.Status().Terminal())
}
