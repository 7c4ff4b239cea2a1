// Package decode turns a raw browser capture back into literal HTML.
//
// Captures arrive in one of three shapes: plain outerHTML, a JSON string
// literal wrapping the outerHTML, or outerHTML still carrying backslash
// escapes from a JSON decode that never happened.
package decode

import (
	"encoding/json"
	"strings"
)

// Method names the branch that produced the decoded text.
type Method string

const (
	// Literal means the input was used as-is.
	Literal Method = "literal"
	// JSON means the input was a valid JSON string literal.
	JSON Method = "json"
	// Manual means backslash escapes were replaced by hand.
	Manual Method = "manual"
)

// Result is the decoded capture plus a diagnostic for captures that still
// look escaped after decoding.
type Result struct {
	HTML   string
	Method Method
	// Residual is set when nothing was changed yet escape markers remain.
	// The pipeline keeps going on best-effort text.
	Residual bool
}

// Replacement order matters: escaped backslashes go last so `\\n` is not
// unescaped twice.
var manualUnescaper = []struct{ from, to string }{
	{`\t`, "\t"},
	{`\n`, "\n"},
	{`\r`, "\r"},
	{`\"`, `"`},
	{`\/`, `/`},
	{`\\`, `\`},
}

var residualMarkers = []string{`\"`, `\/`, `\n`, `\t`, `\r`}

// Decode returns the literal HTML for raw. It never fails.
func Decode(raw string) Result {
	text := strings.TrimSpace(raw)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			return Result{HTML: s, Method: JSON}
		}
		return Result{HTML: Unescape(text[1 : len(text)-1]), Method: Manual}
	}
	if strings.Contains(text, `\t`) || strings.Contains(text, `\n`) {
		return Result{HTML: Unescape(text), Method: Manual}
	}
	return Result{HTML: text, Method: Literal, Residual: hasResidual(text)}
}

// Unescape applies the manual escape replacements in order.
func Unescape(s string) string {
	for _, r := range manualUnescaper {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

func hasResidual(s string) bool {
	for _, m := range residualMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
