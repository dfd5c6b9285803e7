package conversation

import (
	"fmt"
	"sync"

	"github.com/agoraops/agora/types"
)

// FlowController owns the phase of a single conversation. Phases advance
// strictly in order and never move backwards or skip; once the conversation
// reaches the completed phase no further transition is possible.
type FlowController struct {
	mu    sync.RWMutex
	phase types.Phase
}

// NewFlowController returns a controller positioned at the initialization
// phase.
func NewFlowController() *FlowController {
	return &FlowController{phase: types.PhaseInitialization}
}

// Current returns the phase the conversation is in right now.
func (f *FlowController) Current() types.Phase {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.phase
}

// Advance moves to the next phase in the fixed sequence and returns it.
// Advancing past the terminal phase fails with an INVALID_TRANSITION error.
func (f *FlowController) Advance() (types.Phase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, ok := f.phase.Next()
	if !ok {
		return f.phase, types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot advance past terminal phase %q", f.phase))
	}
	f.phase = next
	return next, nil
}
