package interpolate_test

import (
	"testing"

	"github.com/espalier-dev/espalier/internal/interpolate"
	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	data := map[string]any{"option": "Email", "count": 3}

	t.Run("Substitutes known tokens", func(t *testing.T) {
		got := interpolate.Expand("Why did you pick {{option}}?", data)
		assert.Equal(t, "Why did you pick Email?", got)
	})

	t.Run("Whitespace inside braces", func(t *testing.T) {
		got := interpolate.Expand("Pick: {{ option }}", data)
		assert.Equal(t, "Pick: Email", got)
	})

	t.Run("Unmatched tokens pass through verbatim", func(t *testing.T) {
		got := interpolate.Expand("Hello {{missing}} and {{option}}", data)
		assert.Equal(t, "Hello {{missing}} and Email", got)
	})

	t.Run("Non-string values formatted", func(t *testing.T) {
		got := interpolate.Expand("You chose {{count}} items", data)
		assert.Equal(t, "You chose 3 items", got)
	})

	t.Run("Nil context is a no-op", func(t *testing.T) {
		got := interpolate.Expand("Plain {{text}}", nil)
		assert.Equal(t, "Plain {{text}}", got)
	})

	t.Run("Multiple occurrences of same token", func(t *testing.T) {
		got := interpolate.Expand("{{option}}, again {{option}}", data)
		assert.Equal(t, "Email, again Email", got)
	})
}
