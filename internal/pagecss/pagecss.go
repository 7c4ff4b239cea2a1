// Package pagecss pulls page-specific <style> blocks out of a captured
// document into one standalone stylesheet.
package pagecss

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/pagesnap/internal/urlrewrite"
)

// Spec selects CSS from the capture. Exactly one mode applies: a direct
// lookup of the first <style> whose id (or class) matches, or a scan of
// every <style> containing Marker that keeps the rules whose selector
// starts with Prefix.
type Spec struct {
	ID     string `yaml:"id,omitempty" json:"id,omitempty"`
	Class  string `yaml:"class,omitempty" json:"class,omitempty"`
	Marker string `yaml:"marker,omitempty" json:"marker,omitempty"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// DefaultSpecs selects the global styles block and the per-container
// layout rules WordPress emits for block layouts.
var DefaultSpecs = []Spec{
	{ID: "global-styles-inline-css"},
	{Marker: ".wp-container-", Prefix: ".wp-container-"},
}

// Validate rejects a spec that names no mode or mixes modes.
func (s Spec) Validate() error {
	direct := s.ID != "" || s.Class != ""
	scan := s.Marker != "" || s.Prefix != ""
	switch {
	case direct && scan:
		return fmt.Errorf("css spec %s: mixes direct lookup and pattern scan", s)
	case s.ID != "" && s.Class != "":
		return fmt.Errorf("css spec %s: set id or class, not both", s)
	case scan && (s.Marker == "" || s.Prefix == ""):
		return fmt.Errorf("css spec %s: pattern scan needs marker and prefix", s)
	case !direct && !scan:
		return errors.New("css spec: empty")
	}
	return nil
}

func (s Spec) String() string {
	switch {
	case s.ID != "":
		return "id=" + s.ID
	case s.Class != "":
		return "class=" + s.Class
	default:
		return "marker=" + s.Marker + " prefix=" + s.Prefix
	}
}

// Block is what one Spec contributed.
type Block struct {
	Spec  string `json:"spec"`
	Found bool   `json:"found"`
	Bytes int    `json:"bytes"`
	Rules int    `json:"rules,omitempty"`
}

// Result is the assembled stylesheet.
type Result struct {
	CSS       string  `json:"-"`
	Blocks    []Block `json:"blocks"`
	Important int     `json:"important"`
	URLs      int     `json:"urls"`
}

// Extract applies specs in order and joins their output. A spec that
// matches nothing contributes an empty string, never an error. URLs on the
// site domain are made root-relative. max-width declarations are forced
// only in rules picked out by a marker scan; a directly looked-up block is
// copied as it is.
func Extract(doc string, specs []Spec, rw *urlrewrite.Rewriter) (Result, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return Result{}, fmt.Errorf("parse capture: %w", err)
	}
	styles := gq.Find("style")
	var (
		res   Result
		parts []string
	)
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return Result{}, err
		}
		var (
			css   string
			rules int
		)
		if spec.Marker != "" {
			css, rules = scanBlocks(styles, spec)
			var forced int
			css, forced = ForceMaxWidth(css)
			res.Important += forced
		} else {
			css = lookupBlock(styles, spec)
		}
		res.Blocks = append(res.Blocks, Block{Spec: spec.String(), Found: css != "", Bytes: len(css), Rules: rules})
		if css != "" {
			parts = append(parts, css)
		}
	}
	css := strings.Join(parts, "\n")
	if rw != nil {
		css, res.URLs = rw.CSS(css)
	}
	res.CSS = css
	return res, nil
}

func lookupBlock(styles *goquery.Selection, spec Spec) string {
	match := styles.FilterFunction(func(_ int, s *goquery.Selection) bool {
		if spec.ID != "" {
			id, _ := s.Attr("id")
			return id == spec.ID
		}
		class, _ := s.Attr("class")
		for _, c := range strings.Fields(class) {
			if c == spec.Class {
				return true
			}
		}
		return false
	}).First()
	if match.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(match.Text())
}

func scanBlocks(styles *goquery.Selection, spec Spec) (string, int) {
	var out []string
	styles.Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, spec.Marker) {
			return
		}
		out = append(out, matchRules(text, spec.Prefix)...)
	})
	return strings.Join(out, "\n"), len(out)
}

var maxWidthDecl = regexp.MustCompile(`max-width\s*:\s*([^;{}!]+)(!\s*important)?`)

// ForceMaxWidth appends !important to max-width declarations that lack
// it; the stylesheet loads after a more specific default sheet. Media query
// conditions are not declarations and stay untouched.
func ForceMaxWidth(css string) (string, int) {
	var (
		b    strings.Builder
		n    int
		last int
	)
	for _, m := range maxWidthDecl.FindAllStringSubmatchIndex(css, -1) {
		start, end := m[0], m[1]
		if m[4] >= 0 || !declStart(css, start) || !declEnd(css, end) {
			continue
		}
		value := strings.TrimRight(css[m[2]:m[3]], " \t\r\n")
		b.WriteString(css[last:m[2]])
		b.WriteString(value)
		b.WriteString(" !important")
		b.WriteString(css[m[2]+len(value) : end])
		last = end
		n++
	}
	if n == 0 {
		return css, 0
	}
	b.WriteString(css[last:])
	return b.String(), n
}

func declStart(css string, i int) bool {
	if i == 0 {
		return true
	}
	switch css[i-1] {
	case '{', ';', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func declEnd(css string, i int) bool {
	return i == len(css) || css[i] == ';' || css[i] == '}'
}
