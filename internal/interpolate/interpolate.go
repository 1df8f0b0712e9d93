// Package interpolate implements the trivial template contract used when a
// question is materialized: {{name}} tokens in literal text are replaced from
// a key/value context, and unmatched tokens pass through verbatim.
package interpolate

import (
	"fmt"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// Expand substitutes {{name}} tokens in text with values from data.
// Values are formatted with their default string representation. Tokens with
// no matching key are left untouched, including their braces.
func Expand(text string, data map[string]any) string {
	if len(data) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		val, ok := data[name]
		if !ok {
			return tok
		}
		if s, ok := val.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", val)
	})
}
