package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/pagesnap/internal/capture"
)

const fixture = `<!DOCTYPE html><html><head>
<style id="global-styles-inline-css">body{max-width:1200px;background:url(https://paracelsus-recovery.com/bg.png)}</style>
</head><body>
<header id="page-header" class="site-header"><a href="https://www.paracelsus-recovery.com/">Home</a></header>
<main id="content"><p><a href="https://paracelsus-recovery.com/about/">About</a> <a href="https://example.org/x">Out</a></p></main>
<footer id="site-footer"><p>Footer</p></footer>
<div id="pegasus-modal" class="modal">Book a call</div>
</body></html>`

func newTestApp(t *testing.T, mutate func(*Config)) (*App, Config, *bytes.Buffer) {
	t.Helper()
	tmp := t.TempDir()
	cfg := DefaultConfig()
	cfg.RawDir = filepath.Join(tmp, "raw")
	cfg.OutputDir = filepath.Join(tmp, "pages")
	if err := os.MkdirAll(cfg.RawDir, 0o755); err != nil {
		t.Fatalf("mkdir raw: %v", err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	var out bytes.Buffer
	a, err := New(cfg, &out)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, cfg, &out
}

func writeCapture(t *testing.T, cfg Config, page, body string) {
	t.Helper()
	if err := os.WriteFile(RawPath(cfg, page), []byte(body), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestSplitPage_WritesRepairedSections(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	encoded, err := json.Marshal(fixture)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	writeCapture(t, cfg, "home", string(encoded))

	rep, err := a.SplitPage(context.Background(), "home")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(rep.Written) != 4 || len(rep.Missing) != 0 {
		t.Fatalf("written=%v missing=%v, want 4 files and none missing", rep.Written, rep.Missing)
	}
	if rep.Decode != "json" {
		t.Fatalf("decode=%q, want json", rep.Decode)
	}
	dir := PageDir(cfg, "home")

	header := readFile(t, filepath.Join(dir, "01-header.html"))
	if !strings.HasPrefix(header, `<header id="page-header"`) || !strings.HasSuffix(header, "</header>") {
		t.Fatalf("header not bounded by its markers: %q", header)
	}
	if !strings.Contains(header, `<a href="/">Home</a>`) {
		t.Fatalf("bare domain link not rewritten: %q", header)
	}
	main := readFile(t, filepath.Join(dir, "02-main.html"))
	if !strings.Contains(main, `href="/about/"`) || !strings.Contains(main, `href="https://example.org/x"`) {
		t.Fatalf("main links wrong: %q", main)
	}
	if got := readFile(t, filepath.Join(dir, "03-footer.html")); got != `<footer id="site-footer"><p>Footer</p></footer>` {
		t.Fatalf("footer=%q", got)
	}
	modal := readFile(t, filepath.Join(dir, "04-modal.html"))
	if !strings.Contains(modal, `x-show="modalOpen"`) || !strings.Contains(modal, "display: none") {
		t.Fatalf("modal not hidden by default: %q", modal)
	}
	if rep.Repairs["modal"][len(rep.Repairs["modal"])-1].Fixed != 1 {
		t.Fatalf("modal repair count: %+v", rep.Repairs["modal"])
	}

	m, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Page != "home" || m.Source == nil || m.Source.Decode != "json" || len(m.Files) != 4 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	sums := readFile(t, filepath.Join(dir, SumsFile))
	for _, name := range []string{"01-header.html", "02-main.html", "03-footer.html", "04-modal.html", ManifestFile} {
		if !strings.Contains(sums, "  "+name+"\n") {
			t.Fatalf("SHA256SUMS missing %s:\n%s", name, sums)
		}
	}
}

func TestSplitPage_MissingSectionIsSkipped(t *testing.T) {
	a, cfg, out := newTestApp(t, nil)
	doc := strings.Replace(fixture, `<main id="content">`, `<main id="primary">`, 1)
	writeCapture(t, cfg, "about", doc)

	rep, err := a.SplitPage(context.Background(), "about")
	if err != nil {
		t.Fatalf("missing marker must not fail the page: %v", err)
	}
	if len(rep.Missing) != 1 || rep.Missing[0].Section != "main" {
		t.Fatalf("missing=%+v, want main only", rep.Missing)
	}
	dir := PageDir(cfg, "about")
	if _, err := os.Stat(filepath.Join(dir, "02-main.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("main fragment should not be written, stat err=%v", err)
	}
	for _, name := range []string{"01-header.html", "03-footer.html", "04-modal.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s should still be written: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "warning: about: main section skipped") {
		t.Fatalf("expected operator warning, got %q", out.String())
	}
}

func TestSplitPage_RemovesStaleFragmentOfMissingSection(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	ctx := context.Background()
	writeCapture(t, cfg, "home", fixture)
	if _, err := a.SplitPage(ctx, "home"); err != nil {
		t.Fatalf("first split: %v", err)
	}
	dir := PageDir(cfg, "home")
	if _, err := os.Stat(filepath.Join(dir, "02-main.html")); err != nil {
		t.Fatalf("main fragment should exist after first run: %v", err)
	}

	writeCapture(t, cfg, "home", strings.Replace(fixture, `<main id="content">`, `<main id="primary">`, 1))
	if _, err := a.SplitPage(ctx, "home"); err != nil {
		t.Fatalf("second split: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "02-main.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale main fragment left on disk, stat err=%v", err)
	}
	m, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	for _, f := range m.Files {
		if f.Name == "02-main.html" {
			t.Fatalf("manifest still lists the stale fragment: %+v", m.Files)
		}
	}
	if len(m.Missing) != 1 || m.Missing[0].Section != "main" {
		t.Fatalf("missing=%+v, want main", m.Missing)
	}
	if sums := readFile(t, filepath.Join(dir, SumsFile)); strings.Contains(sums, "02-main.html") {
		t.Fatalf("SHA256SUMS still covers the stale fragment:\n%s", sums)
	}
}

func TestSplitPage_RecordsCaptureURL(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	store := &capture.Store{Dir: cfg.RawDir}
	if _, err := store.Save(context.Background(), "home", "https://paracelsus-recovery.com/", fixture, true); err != nil {
		t.Fatalf("save capture: %v", err)
	}
	if _, err := a.SplitPage(context.Background(), "home"); err != nil {
		t.Fatalf("split: %v", err)
	}
	m, err := loadManifest(PageDir(cfg, "home"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Source == nil || m.Source.URL != "https://paracelsus-recovery.com/" {
		t.Fatalf("source=%+v, want the sidecar url", m.Source)
	}
	if m.Commit != BuildCommit {
		t.Fatalf("commit=%q, want %q", m.Commit, BuildCommit)
	}
}

func TestSplitPage_InputMissing(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	_, err := a.SplitPage(context.Background(), "nope")
	if !errors.Is(err, ErrInputMissing) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want ErrInputMissing wrapping os.ErrNotExist", err)
	}
	if !strings.Contains(err.Error(), RawPath(cfg, "nope")) {
		t.Fatalf("error should name the missing path: %v", err)
	}
}

func TestSplitPage_RejectsPathInPageName(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	if _, err := a.SplitPage(context.Background(), "../etc"); err == nil {
		t.Fatalf("expected error for page name with path separator")
	}
}

func TestSplitPage_DryRunWritesNothing(t *testing.T) {
	a, cfg, out := newTestApp(t, func(c *Config) { c.DryRun = true })
	writeCapture(t, cfg, "home", fixture)
	rep, err := a.SplitPage(context.Background(), "home")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(rep.Written) != 0 || len(rep.Repairs) != 4 {
		t.Fatalf("dry run written=%v repairs=%d", rep.Written, len(rep.Repairs))
	}
	if _, err := os.Stat(cfg.OutputDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created output dir: %v", err)
	}
	if !strings.Contains(out.String(), "home: dry run") {
		t.Fatalf("summary=%q", out.String())
	}
}

func TestExtractCSS_WritesStylesheetAndMergesManifest(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	writeCapture(t, cfg, "home", fixture)
	ctx := context.Background()
	if _, err := a.SplitPage(ctx, "home"); err != nil {
		t.Fatalf("split: %v", err)
	}
	rep, err := a.ExtractCSS(ctx, "home")
	if err != nil {
		t.Fatalf("css: %v", err)
	}
	dir := PageDir(cfg, "home")
	css := readFile(t, filepath.Join(dir, CSSFile))
	if css != "body{max-width:1200px;background:url(/bg.png)}" {
		t.Fatalf("css=%q", css)
	}
	if rep.CSS == nil || rep.CSS.Important != 0 || rep.CSS.URLs != 1 {
		t.Fatalf("css report=%+v", rep.CSS)
	}
	m, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.CSS == nil || len(m.Repairs) != 4 || len(m.Files) != 5 {
		t.Fatalf("manifest should keep split data and add css: %+v", m)
	}
}

func TestRerun_IsDeterministic(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	writeCapture(t, cfg, "home", fixture)
	ctx := context.Background()
	dir := PageDir(cfg, "home")

	run := func() (string, string) {
		if _, err := a.SplitPage(ctx, "home"); err != nil {
			t.Fatalf("split: %v", err)
		}
		if _, err := a.ExtractCSS(ctx, "home"); err != nil {
			t.Fatalf("css: %v", err)
		}
		return readFile(t, filepath.Join(dir, ManifestFile)), readFile(t, filepath.Join(dir, SumsFile))
	}
	m1, s1 := run()
	m2, s2 := run()
	if m1 != m2 || s1 != s2 {
		t.Fatalf("re-run changed bookkeeping:\n%s\n---\n%s", m1, m2)
	}
}

func TestRunPages_ContinuesAfterFailure(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	writeCapture(t, cfg, "b", fixture)
	err := RunPages(context.Background(), []string{"a", "b"}, a.SplitPage)
	if !errors.Is(err, ErrInputMissing) {
		t.Fatalf("err=%v, want ErrInputMissing", err)
	}
	if _, serr := os.Stat(filepath.Join(PageDir(cfg, "b"), "02-main.html")); serr != nil {
		t.Fatalf("page b should still be processed: %v", serr)
	}
}

func TestPages_AllListsCaptures(t *testing.T) {
	_, cfg, _ := newTestApp(t, nil)
	writeCapture(t, cfg, "zeta", fixture)
	writeCapture(t, cfg, "alpha", fixture)
	if err := os.WriteFile(filepath.Join(cfg.RawDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.All = true
	pages, err := Pages(cfg, nil)
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	if strings.Join(pages, ",") != "alpha,zeta" {
		t.Fatalf("pages=%v", pages)
	}

	cfg.All = false
	if _, err := Pages(cfg, []string{" "}); err == nil {
		t.Fatalf("expected error without page names")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"home":          "home",
		"About Us":      "about-us",
		"Über Uns":      "uber-uns",
		"addiction--2/": "addiction-2",
		"   ":           "page",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestSplitPage_RecordsInjectabilityIssues(t *testing.T) {
	a, cfg, _ := newTestApp(t, nil)
	doc := strings.Replace(fixture, `<p><a href=`, `<div class="wrap"><p><a href=`, 1)
	writeCapture(t, cfg, "home", doc)
	rep, err := a.SplitPage(context.Background(), "home")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	got := rep.Issues["main"]
	if len(got) != 1 || got[0].Detail != `<div>` {
		t.Fatalf("main issues=%+v, want unclosed div", got)
	}
	if _, ok := rep.Issues["header"]; ok {
		t.Fatalf("header should be clean: %+v", rep.Issues["header"])
	}
	m, err := loadManifest(PageDir(cfg, "home"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if len(m.Issues["main"]) != 1 {
		t.Fatalf("manifest issues=%+v", m.Issues)
	}
}
