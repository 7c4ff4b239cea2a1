package pagecss

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// cssRule is one top-level rule of a stylesheet: a selector or at-rule
// prelude and the raw text between its braces.
type cssRule struct {
	Prelude string
	Body    string
}

func (r cssRule) isAtRule() bool { return strings.HasPrefix(r.Prelude, "@") }

func (r cssRule) String() string { return r.Prelude + "{" + r.Body + "}" }

// splitRules scans css into top-level rules. Statement at-rules such as
// @import and @charset carry no block and are dropped. Scanning stops at
// the first tokenizer error; rules seen before it are returned.
func splitRules(css string) []cssRule {
	var (
		rules   []cssRule
		prelude strings.Builder
		body    strings.Builder
		depth   int
	)
	s := scanner.New(css)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			return rules
		}
		if tok.Type == scanner.TokenComment && depth == 0 {
			continue
		}
		if tok.Type == scanner.TokenChar {
			switch tok.Value {
			case "{":
				depth++
				if depth == 1 {
					continue
				}
			case "}":
				depth--
				if depth == 0 {
					rules = append(rules, cssRule{Prelude: strings.TrimSpace(prelude.String()), Body: body.String()})
					prelude.Reset()
					body.Reset()
					continue
				}
				if depth < 0 {
					depth = 0
					continue
				}
			case ";":
				if depth == 0 {
					prelude.Reset()
					continue
				}
			}
		}
		if depth == 0 {
			prelude.WriteString(tok.Value)
		} else {
			body.WriteString(tok.Value)
		}
	}
}

// blockAtRules are the conditional at-rules whose inner rules are scanned.
var blockAtRules = []string{"@media", "@supports", "@container", "@layer"}

// matchRules returns the rules of css whose selector list has a selector
// starting with prefix. Matches inside conditional at-rules are re-wrapped
// in their prelude.
func matchRules(css, prefix string) []string {
	var out []string
	for _, r := range splitRules(css) {
		if !r.isAtRule() {
			if selectorMatches(r.Prelude, prefix) {
				out = append(out, r.String())
			}
			continue
		}
		if !isBlockAtRule(r.Prelude) {
			continue
		}
		if inner := matchRules(r.Body, prefix); len(inner) > 0 {
			out = append(out, r.Prelude+"{"+strings.Join(inner, "")+"}")
		}
	}
	return out
}

func selectorMatches(selectors, prefix string) bool {
	for _, sel := range strings.Split(selectors, ",") {
		if strings.HasPrefix(strings.TrimSpace(sel), prefix) {
			return true
		}
	}
	return false
}

func isBlockAtRule(prelude string) bool {
	name := strings.ToLower(prelude)
	for _, at := range blockAtRules {
		if name == at || strings.HasPrefix(name, at+" ") || strings.HasPrefix(name, at+"(") {
			return true
		}
	}
	return false
}
