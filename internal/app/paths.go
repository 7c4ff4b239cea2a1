package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/pagesnap/internal/capture"
	"github.com/hyperifyio/pagesnap/internal/section"
)

// Output file names inside a page directory.
const (
	CSSFile      = "00-page-css.css"
	ManifestFile = "manifest.json"
	SumsFile     = "SHA256SUMS"
)

// SectionFiles maps each section to its fragment file.
var SectionFiles = map[section.Name]string{
	section.Header: "01-header.html",
	section.Main:   "02-main.html",
	section.Footer: "03-footer.html",
	section.Modal:  "04-modal.html",
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases s, folds diacritics and joins the remaining
// alphanumeric runs with hyphens.
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(folded)), "-")
	folded = strings.Trim(folded, "-")
	if folded == "" {
		folded = "page"
	}
	return folded
}

// CheckPageName rejects names that would escape the raw or output dirs.
func CheckPageName(page string) error {
	p := strings.TrimSpace(page)
	if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
		return fmt.Errorf("invalid page name %q", page)
	}
	return nil
}

// RawPath returns <rawDir>/<page>.outer.html.
func RawPath(cfg Config, page string) string {
	return filepath.Join(cfg.RawDir, strings.TrimSpace(page)+capture.RawSuffix)
}

// PageDir returns the output directory for page, keyed by its slug.
func PageDir(cfg Config, page string) string {
	return filepath.Join(cfg.OutputDir, slugify(page))
}

// ListPages returns the names of every capture in the raw dir, sorted.
func ListPages(cfg Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.RawDir)
	if err != nil {
		return nil, fmt.Errorf("list raw dir: %w", err)
	}
	var pages []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, capture.RawSuffix) {
			continue
		}
		pages = append(pages, strings.TrimSuffix(name, capture.RawSuffix))
	}
	sort.Strings(pages)
	return pages, nil
}
