package section

import (
	"errors"
	"strings"
	"testing"
)

const (
	headerHTML = `<header id="page-header" class="site-header"><a href="/">Logo</a></header>`
	mainHTML   = `<main id="content"><h1>Welcome</h1></main>`
	footerHTML = `<footer id="site-footer"><p>Footer</p></footer>`
	modalHTML  = `<div id="pegasus-modal">Modal</div>`
)

func buildDoc(parts ...string) string {
	return "<!DOCTYPE html><html><head></head><body>\n" + strings.Join(parts, "\n") + "\n</body></html>"
}

func TestSplit_AllSections(t *testing.T) {
	doc := buildDoc(headerHTML, mainHTML, footerHTML, "  "+modalHTML+"\n  ")
	found, missing := Split(doc, nil)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing sections: %v", missing)
	}
	want := map[Name]string{Header: headerHTML, Main: mainHTML, Footer: footerHTML, Modal: modalHTML}
	if len(found) != len(want) {
		t.Fatalf("found %d sections, want %d", len(found), len(want))
	}
	for i, s := range found {
		if s.Name != Names[i] {
			t.Fatalf("section %d is %s, want %s", i, s.Name, Names[i])
		}
		if s.Text != want[s.Name] {
			t.Fatalf("%s text mismatch:\n got %q\nwant %q", s.Name, s.Text, want[s.Name])
		}
	}
}

func TestSplit_MissingMainStart(t *testing.T) {
	doc := buildDoc(headerHTML, `<h1>No main</h1></main>`, footerHTML, modalHTML)
	found, missing := Split(doc, nil)
	if len(missing) != 1 || missing[0].Section != Main {
		t.Fatalf("expected only main missing, got %v", missing)
	}
	if !errors.Is(missing[0], ErrMarkerMissing) {
		t.Fatalf("expected ErrMarkerMissing")
	}
	for _, name := range []Name{Header, Footer, Modal} {
		if _, ok := lookup(found, name); !ok {
			t.Fatalf("expected %s to be extracted", name)
		}
	}
	if s, _ := lookup(found, Footer); s.Text != footerHTML {
		t.Fatalf("footer=%q", s.Text)
	}
}

func TestExtract_MissingEndMarker(t *testing.T) {
	_, err := extractFrom(`<main id="content"><p>open`, 0, Main, DefaultMarkers[Main])
	var me *MissingError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if me.Marker != "</main>" {
		t.Fatalf("marker=%q, want </main>", me.Marker)
	}
}

func TestExtract_FirstMatchOnly(t *testing.T) {
	doc := `<main id="content">one</main><main id="content">two</main>`
	s, err := extractFrom(doc, 0, Main, DefaultMarkers[Main])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.Text != `<main id="content">one</main>` {
		t.Fatalf("got %q", s.Text)
	}
}

func TestModal_MissingBody(t *testing.T) {
	if _, err := modalFrom(footerHTML+modalHTML, 0); !errors.Is(err, ErrMarkerMissing) {
		t.Fatalf("expected marker missing, got %v", err)
	}
}

func lookup(found []Section, name Name) (Section, bool) {
	for _, s := range found {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
