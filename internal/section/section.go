// Package section slices a captured document into the regions the page
// shell injects separately. Markers are literal substrings, not a parse: a
// document that repeats an id yields its first occurrence only.
package section

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies one region of a captured page.
type Name string

const (
	Header Name = "header"
	Main   Name = "main"
	Footer Name = "footer"
	Modal  Name = "modal"
)

// Names lists the sections in document order.
var Names = []Name{Header, Main, Footer, Modal}

// ErrMarkerMissing reports a start or end marker that could not be found.
// It is never fatal: the section is skipped and the rest proceed.
var ErrMarkerMissing = errors.New("section marker missing")

// Markers delimits a tagged section. The extracted text includes both.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers are the literal delimiters of the header, main and footer
// sections. The modal section has none of its own.
var DefaultMarkers = map[Name]Markers{
	Header: {Start: `<header id="page-header"`, End: `</header>`},
	Main:   {Start: `<main id="content"`, End: `</main>`},
	Footer: {Start: `<footer id="site-footer"`, End: `</footer>`},
}

const (
	footerClose = `</footer>`
	bodyClose   = `</body>`
)

// Section is a named, contiguous slice of the document.
type Section struct {
	Name  Name
	Text  string
	Start int
	End   int
}

// MissingError carries the marker that could not be located.
type MissingError struct {
	Section Name
	Marker  string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: marker %q not found", e.Section, e.Marker)
}

func (e *MissingError) Unwrap() error { return ErrMarkerMissing }

// extractFrom returns the substring from the first occurrence of m.Start at
// or after from through the first occurrence of m.End after it, inclusive.
func extractFrom(doc string, from int, name Name, m Markers) (Section, error) {
	rel := strings.Index(doc[from:], m.Start)
	if rel < 0 {
		return Section{Name: name}, &MissingError{Section: name, Marker: m.Start}
	}
	start := from + rel
	rel = strings.Index(doc[start:], m.End)
	if rel < 0 {
		return Section{Name: name}, &MissingError{Section: name, Marker: m.End}
	}
	end := start + rel + len(m.End)
	return Section{Name: name, Text: doc[start:end], Start: start, End: end}, nil
}

// modalFrom returns the whitespace-trimmed text strictly between the first
// </footer> at or after from and the following </body>.
func modalFrom(doc string, from int) (Section, error) {
	rel := strings.Index(doc[from:], footerClose)
	if rel < 0 {
		return Section{Name: Modal}, &MissingError{Section: Modal, Marker: footerClose}
	}
	start := from + rel + len(footerClose)
	rel = strings.Index(doc[start:], bodyClose)
	if rel < 0 {
		return Section{Name: Modal}, &MissingError{Section: Modal, Marker: bodyClose}
	}
	end := start + rel
	return Section{Name: Modal, Text: strings.TrimSpace(doc[start:end]), Start: start, End: end}, nil
}

// Split extracts every section. Each search begins where the previous
// found section ended, so results are in document order and never overlap.
// A missing section is reported in missing and never aborts the rest.
func Split(doc string, markers map[Name]Markers) (found []Section, missing []*MissingError) {
	if markers == nil {
		markers = DefaultMarkers
	}
	from := 0
	for _, name := range Names {
		var (
			s   Section
			err error
		)
		if name == Modal {
			// The footer section already ends with </footer>; step back so
			// the modal search sees it.
			mf := from
			if n := len(found); n > 0 && found[n-1].Name == Footer {
				mf = found[n-1].End - len(footerClose)
			}
			s, err = modalFrom(doc, mf)
		} else {
			m, ok := markers[name]
			if !ok {
				m = DefaultMarkers[name]
			}
			s, err = extractFrom(doc, from, name, m)
		}
		var me *MissingError
		if errors.As(err, &me) {
			missing = append(missing, me)
			continue
		}
		found = append(found, s)
		from = s.End
	}
	return found, missing
}
