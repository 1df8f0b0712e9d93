package domain

// Response is the current answer state of a single question.
// Value shape depends on the question type: string for text and radio,
// []string for checkbox/tags/rank, float64 for sliders and Likert,
// map[string]any for matrix answers.
type Response struct {
	Value   any    `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// Checked reports whether the response (of a checkbox question) currently
// includes the given option ID.
func (r *Response) Checked(optionID string) bool {
	if r == nil {
		return false
	}
	switch v := r.Value.(type) {
	case []string:
		for _, id := range v {
			if id == optionID {
				return true
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && s == optionID {
				return true
			}
		}
	case string:
		return v == optionID
	}
	return false
}
