package engine

import (
	"fmt"
	"strings"

	"github.com/debaite/debaite/internal/core"
)

var stageInstructions = map[core.Stage]string{
	core.StageOpening:  "Give your opening position on this topic.",
	core.StageRebuttal: "Respond to the previous arguments while presenting your perspective.",
	core.StageClosing:  "Make your final closing argument.",
}

// buildTurnPrompt assembles the prompt for one participant's turn. Sections
// are omitted when empty so short prompts stay short.
func buildTurnPrompt(p core.Participant, topic, context, knowledgeBlock string, stage core.Stage, wordLimit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s %s.\n", p.Name, p.Persona, p.Role)
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if p.Expertise != "" {
		fmt.Fprintf(&b, "Your expertise: %s\n", p.Expertise)
	}
	if p.Style != "" {
		fmt.Fprintf(&b, "Your debate style: %s\n", p.Style)
	}
	if knowledgeBlock != "" {
		b.WriteString("\n")
		b.WriteString(knowledgeBlock)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(stageInstructions[stage])
	if wordLimit > 0 {
		fmt.Fprintf(&b, " Keep it under %d words.", wordLimit)
	}
	b.WriteString("\n")

	if context != "" {
		fmt.Fprintf(&b, "\nPrevious arguments:\n%s\n", context)
	}

	b.WriteString("\nYour response:")
	return b.String()
}

// buildBatchPrompt assembles a single prompt that asks for every
// participant's response at once, labeled AGENT_1..AGENT_N in roster order.
func buildBatchPrompt(participants []core.Participant, topic, context string, stage core.Stage, wordLimit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are simulating a debate between %d participants on the topic: %s\n\n", len(participants), topic)
	b.WriteString("The participants are:\n")
	for i, p := range participants {
		fmt.Fprintf(&b, "AGENT_%d: %s, %s %s", i+1, p.Name, p.Persona, p.Role)
		if p.Expertise != "" {
			fmt.Fprintf(&b, " (expertise: %s)", p.Expertise)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(stageInstructions[stage])
	if wordLimit > 0 {
		fmt.Fprintf(&b, " Keep each response under %d words.", wordLimit)
	}
	b.WriteString("\n")

	if context != "" {
		fmt.Fprintf(&b, "\nPrevious arguments:\n%s\n", context)
	}

	b.WriteString("\nWrite one response per participant, each starting on its own line with its label:\n")
	for i, p := range participants {
		fmt.Fprintf(&b, "AGENT_%d: <%s's response>\n", i+1, p.Name)
	}
	return b.String()
}
