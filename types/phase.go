package types

// Phase represents one stage of the fixed discussion sequence.
// Phases advance strictly forward, one step at a time; no phase is
// entered twice within a single conversation run.
type Phase string

const (
	PhaseInitialization Phase = "initialization"
	PhaseExploration    Phase = "exploration"
	PhaseDiscussion     Phase = "discussion"
	PhaseConsensus      Phase = "consensus"
	PhaseCompleted      Phase = "completed"
)

// phaseOrder is the canonical transition order.
var phaseOrder = []Phase{
	PhaseInitialization,
	PhaseExploration,
	PhaseDiscussion,
	PhaseConsensus,
	PhaseCompleted,
}

// Next returns the phase that follows p and true, or p and false when p is
// terminal or unknown.
func (p Phase) Next() (Phase, bool) {
	for i, ph := range phaseOrder {
		if ph == p && i+1 < len(phaseOrder) {
			return phaseOrder[i+1], true
		}
	}
	return p, false
}

// Terminal reports whether p is the final phase.
func (p Phase) Terminal() bool { return p == PhaseCompleted }

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	for _, ph := range phaseOrder {
		if ph == p {
			return true
		}
	}
	return false
}

// Phases returns the full phase sequence in transition order.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}
