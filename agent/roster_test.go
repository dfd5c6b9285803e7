package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuiltinRoster(t *testing.T) {
	r := NewBuiltinRoster(&mockGateway{}, nil)

	require.Equal(t, 5, r.Size())
	ids := make([]string, 0, 5)
	for _, a := range r.All() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{
		"project_manager",
		"technical_architect",
		"creative_strategist",
		"quality_assurance",
		"resource_coordinator",
	}, ids)

	pm, ok := r.Get("project_manager")
	require.True(t, ok)
	assert.Equal(t, "Alex PM", pm.Name())
	assert.Equal(t, "Project Manager", pm.Role())

	_, ok = r.Get("nobody")
	assert.False(t, ok)
}

func TestNewRoster_Validation(t *testing.T) {
	_, err := NewRoster(nil, &mockGateway{}, nil)
	assert.Error(t, err)

	_, err = NewRoster([]Persona{{Name: "anon"}}, &mockGateway{}, nil)
	assert.Error(t, err)

	p := testPersona()
	_, err = NewRoster([]Persona{p, p}, &mockGateway{}, nil)
	assert.Error(t, err)
}

func TestRoster_States(t *testing.T) {
	r := NewBuiltinRoster(&mockGateway{}, nil)
	states := r.States()
	require.Len(t, states, 5)
	for _, st := range states {
		assert.True(t, st.IsActive)
	}
}
