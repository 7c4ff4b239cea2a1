package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Tag is an editable start tag. Attribute keys are lower-case, values are
// unescaped; String re-serializes the tag the way a browser's outerHTML does.
type Tag struct {
	Name        string
	Attr        []html.Attribute
	SelfClosing bool
}

func newTag(tok html.Token) *Tag {
	attrs := make([]html.Attribute, len(tok.Attr))
	copy(attrs, tok.Attr)
	return &Tag{
		Name:        tok.Data,
		Attr:        attrs,
		SelfClosing: tok.Type == html.SelfClosingTagToken,
	}
}

// Get returns the value of attribute key.
func (t *Tag) Get(key string) (string, bool) {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Has reports whether attribute key is present.
func (t *Tag) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// HasPrefix reports whether any attribute key starts with prefix.
func (t *Tag) HasPrefix(prefix string) bool {
	for _, a := range t.Attr {
		if strings.HasPrefix(a.Key, prefix) {
			return true
		}
	}
	return false
}

// Set replaces the value of key in place, or appends the attribute.
func (t *Tag) Set(key, val string) {
	for i := range t.Attr {
		if t.Attr[i].Key == key {
			t.Attr[i].Val = val
			return
		}
	}
	t.Attr = append(t.Attr, html.Attribute{Key: key, Val: val})
}

// Remove deletes the named attributes and reports whether any existed.
func (t *Tag) Remove(keys ...string) bool {
	removed := false
	out := t.Attr[:0]
	for _, a := range t.Attr {
		if contains(keys, a.Key) {
			removed = true
			continue
		}
		out = append(out, a)
	}
	t.Attr = out
	return removed
}

// Classes returns the static class list.
func (t *Tag) Classes() []string {
	v, _ := t.Get("class")
	return strings.Fields(v)
}

// HasClass reports whether the static class list contains c.
func (t *Tag) HasClass(c string) bool {
	return contains(t.Classes(), c)
}

// AddClass appends c to the class list unless already present.
func (t *Tag) AddClass(c string) bool {
	classes := t.Classes()
	if contains(classes, c) {
		return false
	}
	t.setClasses(append(classes, c))
	return true
}

// FilterClasses drops every class for which drop returns true. The class
// attribute is rewritten single-space separated, and removed when empty.
func (t *Tag) FilterClasses(drop func(string) bool) bool {
	classes := t.Classes()
	kept := classes[:0:0]
	for _, c := range classes {
		if !drop(c) {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(classes) {
		return false
	}
	t.setClasses(kept)
	return true
}

// RemoveClass drops the named classes.
func (t *Tag) RemoveClass(names ...string) bool {
	return t.FilterClasses(func(c string) bool { return contains(names, c) })
}

func (t *Tag) setClasses(classes []string) {
	if len(classes) == 0 {
		t.Remove("class")
		return
	}
	t.Set("class", strings.Join(classes, " "))
}

// String serializes the tag with double-quoted attributes.
func (t *Tag) String() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(t.Name)
	for _, a := range t.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Val))
		b.WriteByte('"')
	}
	if t.SelfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", "\u00a0", "&nbsp;")

// escapeAttr follows the HTML serialization algorithm for attribute values.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
