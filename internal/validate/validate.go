// Package validate checks that a repaired fragment can be injected verbatim
// into a document shell.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

// Issue is one contract violation found in a fragment.
type Issue struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (i Issue) String() string { return i.Kind + ": " + i.Detail }

// Issue kinds.
const (
	Unclosed    = "unclosed-tag"
	Unmatched   = "unmatched-close"
	AbsoluteURL = "absolute-url"
	WidgetState = "widget-state"
)

// Options selects what Fragment looks for.
type Options struct {
	// Domain whose absolute URLs must not survive rewriting.
	Domain string
	// StateClasses are classes only a running widget adds.
	StateClasses []string
}

// DefaultStateClasses are the classes the slider library adds on init.
var DefaultStateClasses = []string{"flickity-enabled", "flickity-viewport", "flickity-slider"}

// Fragment returns every issue in text, in document order for tag issues
// followed by URL and state issues.
func Fragment(text string, o Options) []Issue {
	issues := Balance(text)
	if o.Domain != "" {
		issues = append(issues, AbsoluteURLs(text, o.Domain)...)
	}
	issues = append(issues, StateClasses(text, o.StateClasses)...)
	return issues
}

// Balance reports start tags never closed and end tags with no open
// element. Void elements and self-closing tags need no end tag; elements
// whose end tag HTML lets you omit are not reported.
func Balance(text string) []Issue {
	var (
		issues []Issue
		open   []string
	)
	s := markup.NewStream(text)
	for s.Next() {
		tok := s.Token()
		switch {
		case tok.Type == html.StartTagToken:
			if !markup.IsVoid(tok.Name) {
				open = append(open, tok.Name)
			}
		case tok.Type == html.EndTagToken:
			i := len(open) - 1
			for i >= 0 && open[i] != tok.Name {
				i--
			}
			if i < 0 {
				issues = append(issues, Issue{Kind: Unmatched, Detail: "</" + tok.Name + ">"})
				continue
			}
			for _, name := range open[i+1:] {
				if !optionalEnd[name] {
					issues = append(issues, Issue{Kind: Unclosed, Detail: "<" + name + ">"})
				}
			}
			open = open[:i]
		}
	}
	for _, name := range open {
		if !optionalEnd[name] {
			issues = append(issues, Issue{Kind: Unclosed, Detail: "<" + name + ">"})
		}
	}
	return issues
}

var optionalEnd = map[string]bool{
	"li": true, "p": true, "dt": true, "dd": true, "option": true, "optgroup": true,
	"tr": true, "td": true, "th": true, "thead": true, "tbody": true, "tfoot": true,
	"rt": true, "rp": true, "colgroup": true,
}

// AbsoluteURLs reports each distinct absolute URL on domain left in text.
func AbsoluteURLs(text, domain string) []Issue {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	re := regexp.MustCompile(`https?://(?:www\.)?` + regexp.QuoteMeta(domain) + `[^\s"'<>()]*`)
	seen := map[string]bool{}
	var out []string
	for _, u := range re.FindAllString(text, -1) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	sort.Strings(out)
	issues := make([]Issue, 0, len(out))
	for _, u := range out {
		issues = append(issues, Issue{Kind: AbsoluteURL, Detail: u})
	}
	return issues
}

// StateClasses reports elements still carrying a live-widget class in a
// static class attribute.
func StateClasses(text string, classes []string) []Issue {
	if len(classes) == 0 {
		return nil
	}
	counts := map[string]int{}
	s := markup.NewStream(text)
	for s.Next() {
		tok := s.Token()
		if !tok.IsStart() {
			continue
		}
		for _, c := range classes {
			if tok.Tag.HasClass(c) {
				counts[c]++
			}
		}
	}
	var issues []Issue
	for _, c := range classes {
		if n := counts[c]; n > 0 {
			issues = append(issues, Issue{Kind: WidgetState, Detail: fmt.Sprintf("%s on %d element(s)", c, n)})
		}
	}
	return issues
}
