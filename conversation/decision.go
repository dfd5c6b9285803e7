package conversation

import (
	"fmt"
	"strings"

	"github.com/agoraops/agora/types"
)

// CompileDecision renders the final decision text for a winning proposal.
// The output is deterministic: the same proposal and vote slice always
// produce byte-identical text. The vote count in the headline counts
// approvals only, while the voting summary lists every vote in the order it
// was cast.
func CompileDecision(p types.Proposal, votes []types.Vote) string {
	approved := 0
	for _, v := range votes {
		if v.Approve {
			approved++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Proposal '%s' has been approved with %d votes.\n", p.Title, approved)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	b.WriteString("\nVoting Summary:\n")
	for _, v := range votes {
		verdict := "Reject"
		if v.Approve {
			verdict = "Approve"
		}
		fmt.Fprintf(&b, "- %s: %s\n", v.AgentID, verdict)
		if v.Reasoning != "" {
			fmt.Fprintf(&b, "  Reasoning: %s\n", v.Reasoning)
		}
	}
	return b.String()
}
