package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/capture"
	"github.com/hyperifyio/pagesnap/internal/decode"
	"github.com/hyperifyio/pagesnap/internal/pagecss"
	"github.com/hyperifyio/pagesnap/internal/repair"
	"github.com/hyperifyio/pagesnap/internal/section"
	"github.com/hyperifyio/pagesnap/internal/urlrewrite"
	"github.com/hyperifyio/pagesnap/internal/validate"
)

// ErrInputMissing is returned when a page's raw capture does not exist.
// Commands exit non-zero on it; every other condition is logged and skipped.
var ErrInputMissing = errors.New("input capture missing")

// App runs the split and CSS pipelines for one configuration.
type App struct {
	cfg  Config
	rw   *urlrewrite.Rewriter
	opts repair.Options
	out  io.Writer
}

// PageReport summarizes one page run.
type PageReport struct {
	Page    string
	Dir     string
	Decode  decode.Method
	Written []string
	Missing []MissingEntry
	Repairs map[string][]repair.Result
	Issues  map[string][]validate.Issue
	CSS     *pagecss.Result
}

// New validates cfg and prepares the rewriter and repair anchors. Operator
// warnings are printed to out; nil discards them.
func New(cfg Config, out io.Writer) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}
	return &App{
		cfg:  cfg,
		rw:   urlrewrite.New(cfg.Domain),
		opts: cfg.RepairOptions(),
		out:  out,
	}, nil
}

// rulesFor returns the passes applied to a section, URL rewriting first.
func (a *App) rulesFor(name section.Name) []repair.Rule {
	rules := []repair.Rule{{Name: "url-rewrite", Apply: a.rw.HTML}}
	switch name {
	case section.Header:
		rules = append(rules, repair.HeaderRules(a.opts)...)
	case section.Main:
		rules = append(rules, repair.MainRules(a.opts)...)
	case section.Modal:
		rules = append(rules, repair.ModalRules(a.opts)...)
	}
	return rules
}

// check runs the injectability checks on a repaired fragment.
func (a *App) check(text string) []validate.Issue {
	return validate.Fragment(text, validate.Options{
		Domain:       a.rw.Domain(),
		StateClasses: validate.DefaultStateClasses,
	})
}

// readCapture loads and decodes page's raw capture.
func (a *App) readCapture(page string, logger zerolog.Logger) (string, string, decode.Result, error) {
	if err := CheckPageName(page); err != nil {
		return "", "", decode.Result{}, err
	}
	path := RawPath(a.cfg, page)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", decode.Result{}, fmt.Errorf("%w: %s: %w", ErrInputMissing, path, err)
	}
	if err != nil {
		return "", "", decode.Result{}, fmt.Errorf("read capture: %w", err)
	}
	raw := string(b)
	dec := decode.Decode(raw)
	ev := logger.Debug()
	if dec.Residual {
		ev = logger.Warn()
	}
	ev.Str("path", path).Str("method", string(dec.Method)).Bool("residualEscapes", dec.Residual).Int("bytes", len(dec.HTML)).Msg("decoded capture")
	return path, raw, dec, nil
}

// sourceInfo describes the capture. The URL comes from the capture sidecar
// when capture-page wrote one.
func (a *App) sourceInfo(ctx context.Context, page, path, raw string, dec decode.Result, logger zerolog.Logger) *SourceInfo {
	store := &capture.Store{Dir: a.cfg.RawDir}
	var url string
	meta, err := store.LoadMeta(ctx, page)
	switch {
	case err == nil:
		url = meta.URL
	case !errors.Is(err, os.ErrNotExist):
		logger.Warn().Err(err).Msg("capture sidecar unreadable")
	}
	return newSourceInfo(path, url, raw, dec)
}

// SplitPage writes the four repaired section fragments for page. A section
// whose marker is missing is warned about and not written, and its fragment
// from a previous run is removed.
func (a *App) SplitPage(ctx context.Context, page string) (PageReport, error) {
	if err := ctx.Err(); err != nil {
		return PageReport{}, err
	}
	logger := log.With().Str("page", page).Logger()
	path, raw, dec, err := a.readCapture(page, logger)
	if err != nil {
		return PageReport{}, err
	}
	rep := PageReport{
		Page:    page,
		Dir:     PageDir(a.cfg, page),
		Decode:  dec.Method,
		Repairs: map[string][]repair.Result{},
	}

	found, missing := section.Split(dec.HTML, section.DefaultMarkers)
	for _, m := range missing {
		logger.Warn().Str("section", string(m.Section)).Str("marker", m.Marker).Msg("section marker not found; skipping")
		fmt.Fprintf(a.out, "warning: %s: %s section skipped, marker %q not found\n", page, m.Section, m.Marker)
		rep.Missing = append(rep.Missing, MissingEntry{Section: string(m.Section), Marker: m.Marker})
	}

	// A fragment left by an earlier run would otherwise be listed as current.
	removed := 0
	if !a.cfg.DryRun {
		for _, m := range missing {
			name := SectionFiles[m.Section]
			err := os.Remove(filepath.Join(rep.Dir, name))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return rep, fmt.Errorf("remove stale %s: %w", name, err)
			}
			removed++
			logger.Info().Str("section", string(m.Section)).Str("file", name).Msg("removed stale section")
		}
	}

	if !a.cfg.DryRun && len(found) > 0 {
		if err := os.MkdirAll(rep.Dir, 0o755); err != nil {
			return rep, fmt.Errorf("mkdir page dir: %w", err)
		}
	}
	for _, sec := range found {
		secLog := logger.With().Str("section", string(sec.Name)).Logger()
		text, results := repair.Run(sec.Text, a.rulesFor(sec.Name), secLog)
		rep.Repairs[string(sec.Name)] = results
		if issues := a.check(text); len(issues) > 0 {
			for _, is := range issues {
				secLog.Warn().Str("kind", is.Kind).Str("detail", is.Detail).Msg("fragment not injectable as-is")
			}
			if rep.Issues == nil {
				rep.Issues = map[string][]validate.Issue{}
			}
			rep.Issues[string(sec.Name)] = issues
		}
		name := SectionFiles[sec.Name]
		if a.cfg.DryRun {
			secLog.Info().Str("file", name).Int("bytes", len(text)).Msg("dry run; not writing")
			continue
		}
		if err := os.WriteFile(filepath.Join(rep.Dir, name), []byte(text), 0o644); err != nil {
			return rep, fmt.Errorf("write %s: %w", name, err)
		}
		rep.Written = append(rep.Written, name)
		secLog.Info().Str("file", name).Int("bytes", len(text)).Msg("wrote section")
	}

	if !a.cfg.DryRun && (len(found) > 0 || removed > 0) {
		m, err := loadManifest(rep.Dir)
		if err != nil {
			logger.Warn().Err(err).Msg("previous manifest unreadable; rebuilding")
			m = Manifest{}
		}
		m.Page = page
		m.Source = a.sourceInfo(ctx, page, path, raw, dec, logger)
		m.Missing = rep.Missing
		m.Repairs = rep.Repairs
		m.Issues = rep.Issues
		if err := writeManifest(rep.Dir, m); err != nil {
			return rep, err
		}
	}
	a.summarize(rep)
	return rep, nil
}

// ExtractCSS writes the page stylesheet assembled from the configured specs.
// A spec that matches nothing contributes nothing; an empty result is still
// written so the page directory stays complete.
func (a *App) ExtractCSS(ctx context.Context, page string) (PageReport, error) {
	if err := ctx.Err(); err != nil {
		return PageReport{}, err
	}
	logger := log.With().Str("page", page).Logger()
	path, raw, dec, err := a.readCapture(page, logger)
	if err != nil {
		return PageReport{}, err
	}
	rep := PageReport{Page: page, Dir: PageDir(a.cfg, page), Decode: dec.Method}

	res, err := pagecss.Extract(dec.HTML, a.cfg.Specs(), a.rw)
	if err != nil {
		return rep, err
	}
	rep.CSS = &res
	for _, b := range res.Blocks {
		ev := logger.Debug()
		if !b.Found {
			ev = logger.Warn()
		}
		ev.Str("spec", b.Spec).Bool("found", b.Found).Int("bytes", b.Bytes).Int("rules", b.Rules).Msg("css block")
	}
	logger.Info().Int("bytes", len(res.CSS)).Int("important", res.Important).Int("urls", res.URLs).Msg("extracted page css")
	for _, is := range validate.AbsoluteURLs(res.CSS, a.rw.Domain()) {
		logger.Warn().Str("detail", is.Detail).Msg("absolute url left in page css")
	}
	if strings.TrimSpace(res.CSS) == "" {
		fmt.Fprintf(a.out, "warning: %s: no page css matched\n", page)
	}
	if a.cfg.DryRun {
		a.summarize(rep)
		return rep, nil
	}

	if err := os.MkdirAll(rep.Dir, 0o755); err != nil {
		return rep, fmt.Errorf("mkdir page dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rep.Dir, CSSFile), []byte(res.CSS), 0o644); err != nil {
		return rep, fmt.Errorf("write %s: %w", CSSFile, err)
	}
	rep.Written = []string{CSSFile}

	m, err := loadManifest(rep.Dir)
	if err != nil {
		logger.Warn().Err(err).Msg("previous manifest unreadable; rebuilding")
		m = Manifest{}
	}
	m.Page = page
	m.Source = a.sourceInfo(ctx, page, path, raw, dec, logger)
	m.CSS = &res
	if err := writeManifest(rep.Dir, m); err != nil {
		return rep, err
	}
	a.summarize(rep)
	return rep, nil
}

func (a *App) summarize(rep PageReport) {
	written := "nothing written"
	if len(rep.Written) > 0 {
		written = "wrote " + strings.Join(rep.Written, ", ")
	}
	if a.cfg.DryRun {
		written = "dry run"
	}
	line := fmt.Sprintf("%s: %s", rep.Page, written)
	if len(rep.Missing) > 0 {
		names := make([]string, 0, len(rep.Missing))
		for _, m := range rep.Missing {
			names = append(names, m.Section)
		}
		line += "; missing " + strings.Join(names, ", ")
	}
	fmt.Fprintln(a.out, line)
}

// PageFunc is one pipeline applied to a page.
type PageFunc func(ctx context.Context, page string) (PageReport, error)

// RunPages applies fn to every page. A failing page does not stop the
// others; failures are joined into the returned error.
func RunPages(ctx context.Context, pages []string, fn PageFunc) error {
	var errs []error
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := fn(ctx, p); err != nil {
			log.Error().Err(err).Str("page", p).Msg("page failed")
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Pages resolves the page list for a command: explicit names, or every
// capture in the raw dir when all is set.
func Pages(cfg Config, args []string) ([]string, error) {
	if cfg.All {
		pages, err := ListPages(cfg)
		if err != nil {
			return nil, err
		}
		if len(pages) == 0 {
			return nil, fmt.Errorf("%w: no *%s files in %s", ErrInputMissing, capture.RawSuffix, cfg.RawDir)
		}
		return pages, nil
	}
	var pages []string
	for _, a := range args {
		if s := strings.TrimSpace(a); s != "" {
			pages = append(pages, s)
		}
	}
	if len(pages) == 0 {
		return nil, errors.New("no page name given")
	}
	return pages, nil
}
