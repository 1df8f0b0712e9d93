package domain

// VisibleDiff captures the change in the set of rendered node IDs between two
// reconciliation passes. It is what the HTTP adapter streams to subscribers,
// so clients can patch their view instead of re-fetching the whole step.
type VisibleDiff struct {
	StepID string   `json:"step_id"`
	Shown  []string `json:"shown,omitempty"`
	Hidden []string `json:"hidden,omitempty"`
}

// DiffVisible compares two ordered node-ID lists and returns the diff, or nil
// when nothing changed.
func DiffVisible(stepID string, before, after []string) *VisibleDiff {
	prev := make(map[string]bool, len(before))
	for _, id := range before {
		prev[id] = true
	}
	next := make(map[string]bool, len(after))
	for _, id := range after {
		next[id] = true
	}

	d := &VisibleDiff{StepID: stepID}
	for _, id := range after {
		if !prev[id] {
			d.Shown = append(d.Shown, id)
		}
	}
	for _, id := range before {
		if !next[id] {
			d.Hidden = append(d.Hidden, id)
		}
	}

	if len(d.Shown) == 0 && len(d.Hidden) == 0 {
		return nil
	}
	return d
}
