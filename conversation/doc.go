// Package conversation implements the discussion engine: the phase state
// machine, the proposal ledger with majority voting, the decision compiler,
// and the orchestrator that drives a roster of agents through a complete
// goal-oriented conversation.
package conversation
