package tui

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
)

// RenderView builds the markdown for the current state of a step: every live
// view node in render order, with its control and current answer. Nodes in
// their removal grace period render struck through.
func RenderView(step *domain.Step, tree *memory.Tree, responses map[string]*domain.Response) string {
	var sb strings.Builder

	if step.Title != "" {
		sb.WriteString(fmt.Sprintf("# %s\n\n", step.Title))
	}

	for i, node := range tree.Nodes() {
		q := step.QuestionByID(node.QuestionID)
		if q == nil {
			continue
		}
		resp := responses[node.QuestionID]

		title := node.Title
		if node.Flag("leaving") {
			title = "~~" + title + "~~"
		}
		sb.WriteString(fmt.Sprintf("**%d. %s**  `%s`\n\n", i+1, title, node.ID))

		if !node.Flag("leaving") {
			renderControl(&sb, q, resp)
		}
		if resp != nil && resp.Comment != "" {
			sb.WriteString(fmt.Sprintf("   > %s\n\n", resp.Comment))
		}
	}

	return sb.String()
}

func renderControl(sb *strings.Builder, q *domain.Question, resp *domain.Response) {
	switch q.Type {
	case domain.TypeRadio:
		for _, opt := range q.Options {
			mark := "( )"
			if resp != nil && resp.Checked(opt.ID) {
				mark = "(•)"
			}
			sb.WriteString(fmt.Sprintf("   - %s %s\n", mark, opt.Label))
		}
		sb.WriteString("\n")
	case domain.TypeCheckbox, domain.TypeRankOptions:
		for _, opt := range q.Options {
			mark := "[ ]"
			if resp.Checked(opt.ID) {
				mark = "[x]"
			}
			sb.WriteString(fmt.Sprintf("   - %s %s\n", mark, opt.Label))
		}
		sb.WriteString("\n")
	default:
		if resp == nil || resp.Value == nil {
			sb.WriteString("   _unanswered_\n\n")
			return
		}
		sb.WriteString(fmt.Sprintf("   > %s\n\n", formatValue(resp.Value)))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
