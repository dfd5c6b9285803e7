package agent

import (
	"strings"

	"github.com/agoraops/agora/types"
)

// UserQuestionMarker is the line prefix an agent uses to signal that it
// cannot proceed without input from the human participant.
const UserQuestionMarker = "QUESTION FOR USER:"

// RequiresUserInput reports whether text contains a line that begins with
// UserQuestionMarker, matched case-insensitively.
func RequiresUserInput(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if hasFoldPrefix(strings.TrimSpace(line), UserQuestionMarker) {
			return true
		}
	}
	return false
}

// ParseProposals extracts TITLE/DESCRIPTION blocks from generated text.
// A block needs a non-empty title; a missing description yields a proposal
// with an empty description rather than dropping the block. Text outside
// the expected markers is ignored.
func ParseProposals(text, proposedBy string) []types.Proposal {
	var proposals []types.Proposal

	var title string
	var desc strings.Builder
	flush := func() {
		if strings.TrimSpace(title) != "" {
			proposals = append(proposals, types.NewProposal(
				strings.TrimSpace(title),
				strings.TrimSpace(desc.String()),
				proposedBy,
			))
		}
		title = ""
		desc.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case hasFoldPrefix(trimmed, "TITLE:"):
			flush()
			title = trimmed[len("TITLE:"):]
		case hasFoldPrefix(trimmed, "DESCRIPTION:"):
			desc.WriteString(trimmed[len("DESCRIPTION:"):])
		case title != "" && trimmed != "":
			// Continuation of a multi-line description.
			if desc.Len() > 0 {
				desc.WriteByte(' ')
			}
			desc.WriteString(trimmed)
		}
	}
	flush()

	return proposals
}

// ParseVerdict extracts an approve/reject judgment and reasoning from
// generated text. Preference order: an explicit VERDICT line, then the
// first occurrence of approve/reject anywhere in the text. Unparseable
// responses count as rejection; approval is never fabricated.
func ParseVerdict(text string) (approve bool, reasoning string) {
	var verdictLine string
	var reasonLines []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case hasFoldPrefix(trimmed, "VERDICT:"):
			verdictLine = strings.TrimSpace(trimmed[len("VERDICT:"):])
		case hasFoldPrefix(trimmed, "REASONING:"):
			reasonLines = append(reasonLines, strings.TrimSpace(trimmed[len("REASONING:"):]))
		case len(reasonLines) > 0 && trimmed != "":
			reasonLines = append(reasonLines, trimmed)
		}
	}

	reasoning = strings.TrimSpace(strings.Join(reasonLines, " "))

	candidate := verdictLine
	if candidate == "" {
		candidate = text
	}
	lower := strings.ToLower(candidate)
	approveIdx := strings.Index(lower, "approve")
	rejectIdx := strings.Index(lower, "reject")

	switch {
	case approveIdx >= 0 && (rejectIdx < 0 || approveIdx < rejectIdx):
		approve = true
	default:
		approve = false
	}

	if reasoning == "" {
		reasoning = strings.TrimSpace(text)
	}
	return approve, reasoning
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
