package markup

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestStream_KeepAllIsByteIdentical(t *testing.T) {
	src := "<div class='a'  data-x=\"1\">\n  <img src=x alt>\n  <!-- note --><script>if (a < b) {}</script>&amp;\n</div>"
	s := NewStream(src)
	for s.Next() {
		s.Keep()
	}
	if got := s.String(); got != src {
		t.Fatalf("round trip changed input:\n got %q\nwant %q", got, src)
	}
}

func TestStream_DepthTracksNesting(t *testing.T) {
	s := NewStream(`<div><p>x<br></p><img src="a"></div>`)
	var depths []int
	for s.Next() {
		if tok := s.Token(); tok.Type != html.TextToken {
			depths = append(depths, s.Depth())
		}
	}
	want := []int{1, 2, 2, 1, 1, 0}
	if len(depths) != len(want) {
		t.Fatalf("depths=%v, want %v", depths, want)
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Fatalf("depths=%v, want %v", depths, want)
		}
	}
}

func TestStream_SkipElement(t *testing.T) {
	s := NewStream(`<div><video autoplay=""><source src="a.mp4"><div>x</div></video><p>keep</p></div>`)
	for s.Next() {
		if tok := s.Token(); tok.Type == html.StartTagToken && tok.Name == "video" {
			s.SkipElement()
			continue
		}
		s.Keep()
	}
	if got, want := s.String(), `<div><p>keep</p></div>`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTag_StringEscapesLikeBrowser(t *testing.T) {
	tag := parseTag(`<div :class="{ 'a': x &amp;&amp; y }" title='say "hi"' hidden>`)
	if tag == nil {
		t.Fatalf("expected a tag")
	}
	got := tag.String()
	want := `<div :class="{ 'a': x &amp;&amp; y }" title="say &quot;hi&quot;" hidden="">`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTag_ClassEditing(t *testing.T) {
	tag := parseTag(`<div class="  a  b   c ">`)
	if !tag.RemoveClass("b") {
		t.Fatalf("expected removal")
	}
	if v, _ := tag.Get("class"); v != "a c" {
		t.Fatalf("class=%q, want %q", v, "a c")
	}
	if tag.AddClass("a") {
		t.Fatalf("did not expect duplicate add")
	}
	tag.RemoveClass("a", "c")
	if tag.Has("class") {
		t.Fatalf("expected empty class attribute to be removed")
	}
}

func TestTag_StyleEditingPreservesOtherProps(t *testing.T) {
	tag := parseTag(`<div style="position: absolute; left: 0%; --slide-width: 50%; background: url('data:a;b'); transform: translateX(10%);">`)
	if !tag.RemoveStyleProps("position", "left", "transform") {
		t.Fatalf("expected removal")
	}
	got, _ := tag.Get("style")
	if want := "--slide-width: 50%; background: url('data:a;b');"; got != want {
		t.Fatalf("style=%q, want %q", got, want)
	}
	if tag.RemoveStyleProps("position") {
		t.Fatalf("second removal should be a no-op")
	}
}

func TestTag_SetStylePropOnlyWhenAbsent(t *testing.T) {
	tag := parseTag(`<div id="m">`)
	if !tag.SetStyleProp("display", "none") {
		t.Fatalf("expected display to be set")
	}
	if tag.SetStyleProp("display", "block") {
		t.Fatalf("did not expect overwrite")
	}
	if got := tag.String(); got != `<div id="m" style="display: none;">` {
		t.Fatalf("got %q", got)
	}
}

// parseTag decodes the first start tag found in s.
func parseTag(s string) *Tag {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			return newTag(z.Token())
		}
	}
}
