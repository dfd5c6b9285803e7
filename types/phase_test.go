package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_Next_Order(t *testing.T) {
	p := PhaseInitialization
	var seen []Phase
	for {
		seen = append(seen, p)
		next, ok := p.Next()
		if !ok {
			break
		}
		p = next
	}
	assert.Equal(t, []Phase{
		PhaseInitialization,
		PhaseExploration,
		PhaseDiscussion,
		PhaseConsensus,
		PhaseCompleted,
	}, seen)
}

func TestPhase_Next_TerminalHasNoSuccessor(t *testing.T) {
	next, ok := PhaseCompleted.Next()
	assert.False(t, ok)
	assert.Equal(t, PhaseCompleted, next)
	assert.True(t, PhaseCompleted.Terminal())
}

func TestPhase_Next_Unknown(t *testing.T) {
	_, ok := Phase("bogus").Next()
	assert.False(t, ok)
	assert.False(t, Phase("bogus").Valid())
}

func TestPhases_ReturnsCopy(t *testing.T) {
	a := Phases()
	a[0] = PhaseCompleted
	b := Phases()
	require.Equal(t, PhaseInitialization, b[0])
}
