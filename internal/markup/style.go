package markup

import "strings"

// Decl is one inline-style declaration.
type Decl struct {
	Prop  string
	Value string
}

// ParseStyle splits an inline style attribute into declarations. Semicolons
// inside parentheses or quotes (data URIs, url("a;b")) do not split.
func ParseStyle(style string) []Decl {
	var out []Decl
	for _, part := range splitDecls(style) {
		colon := strings.IndexByte(part, ':')
		if colon <= 0 {
			continue
		}
		prop := strings.TrimSpace(part[:colon])
		val := strings.TrimSpace(part[colon+1:])
		if prop == "" {
			continue
		}
		out = append(out, Decl{Prop: prop, Value: val})
	}
	return out
}

func splitDecls(s string) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		parts = append(parts, s[start:])
	}
	return parts
}

// FormatStyle renders declarations as "prop: value;" joined by single spaces.
func FormatStyle(decls []Decl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Prop+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// StyleProp returns the value of an inline-style property on t.
func (t *Tag) StyleProp(prop string) (string, bool) {
	style, _ := t.Get("style")
	for _, d := range ParseStyle(style) {
		if strings.EqualFold(d.Prop, prop) {
			return d.Value, true
		}
	}
	return "", false
}

// RemoveStyleProps drops the named inline-style properties, keeping the
// others in order. An emptied style attribute is removed.
func (t *Tag) RemoveStyleProps(props ...string) bool {
	style, ok := t.Get("style")
	if !ok {
		return false
	}
	decls := ParseStyle(style)
	kept := decls[:0:0]
	for _, d := range decls {
		if !contains(props, strings.ToLower(d.Prop)) {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(decls) {
		return false
	}
	if len(kept) == 0 {
		t.Remove("style")
		return true
	}
	t.Set("style", FormatStyle(kept))
	return true
}

// SetStyleProp sets an inline-style property unless it is already present.
func (t *Tag) SetStyleProp(prop, val string) bool {
	if _, ok := t.StyleProp(prop); ok {
		return false
	}
	style, _ := t.Get("style")
	decls := append(ParseStyle(style), Decl{Prop: prop, Value: val})
	t.Set("style", FormatStyle(decls))
	return true
}
