// Package graph renders a step's dependency graph as Mermaid flowchart
// syntax, for debugging form logic and for documentation.
package graph

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Overlay marks dynamic state to highlight on the graph.
type Overlay struct {
	// VisibleNodes are view-node IDs currently rendered in the session.
	VisibleNodes []string
}

// GenerateMermaid produces a Mermaid flowchart of the step's reactive
// structure. Shapes encode the signal classification:
//   - [/Parallelogram/]: continuous input (debounced free text)
//   - [Rectangle]: discrete input
//   - [[Subroutine]]: option-specific question instance
//
// Condition edges are solid and labeled with the rule; option linkage edges
// are dotted and labeled with the option ID.
func GenerateMermaid(step *domain.Step, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i := range step.Questions {
		q := &step.Questions[i]
		writeNode(&sb, q)

		if q.Conditional() {
			for _, rule := range q.Conditions.Rules {
				if rule.QuestionID == "" {
					continue
				}
				label := string(rule.Operator)
				if rule.Value != nil {
					label = fmt.Sprintf("%s %v", rule.Operator, rule.Value)
				}
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
					sanitizeMermaidID(rule.QuestionID),
					strings.ReplaceAll(label, "\"", "'"),
					sanitizeMermaidID(q.ID)))
			}
		}

		if q.OptionSpecific() {
			sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n",
				sanitizeMermaidID(q.LinkedQuestionID),
				q.ForOptionID,
				sanitizeMermaidID(domain.OptionNodeID(q.ID, q.ForOptionID))))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of the viewer theme.
		sb.WriteString("    classDef visible fill:#dcfce7,stroke:#166534,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.VisibleNodes {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s visible;\n", safeID))
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, q *domain.Question) {
	id := q.ID
	opener, closer := "[", "]"
	switch {
	case q.OptionSpecific():
		id = domain.OptionNodeID(q.ID, q.ForOptionID)
		opener, closer = "[[", "]]"
	case q.Type.Kind() == domain.KindContinuous:
		opener, closer = "[/", "/]"
	}

	label := q.Title
	if label == "" {
		label = id
	}
	sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n",
		sanitizeMermaidID(id), opener,
		strings.ReplaceAll(label, "\"", "'"), closer))
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", "@", "_at_", "{", "_", "}", "_", " ", "_")
	return r.Replace(id)
}
