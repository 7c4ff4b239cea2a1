package app

import (
	"time"

	"github.com/hyperifyio/pagesnap/internal/pagecss"
	"github.com/hyperifyio/pagesnap/internal/repair"
	"github.com/hyperifyio/pagesnap/internal/urlrewrite"
)

// Defaults shared by flags, file config and env overlays.
const (
	DefaultRawDir    = "raw"
	DefaultOutputDir = "pages"
	DefaultDomain    = urlrewrite.DefaultDomain
)

// Config holds runtime configuration for the commands.
type Config struct {
	RawDir    string
	OutputDir string
	Domain    string

	// Behavior
	DryRun  bool
	Verbose bool
	All     bool

	// Repair anchors; zero values fall back to repair.DefaultOptions.
	HeaderRegions     []repair.Region
	ModalID           string
	ModalBinding      string
	TransitionClasses []string

	// Page CSS
	CSSSpecs []pagecss.Spec

	// Capture
	CaptureURL     string
	CaptureWait    time.Duration
	CaptureTimeout time.Duration
	CaptureJSON    bool
	CaptureScroll  bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RawDir:         DefaultRawDir,
		OutputDir:      DefaultOutputDir,
		Domain:         DefaultDomain,
		CaptureTimeout: 60 * time.Second,
	}
}

// RepairOptions merges configured anchors over the theme defaults.
func (c Config) RepairOptions() repair.Options {
	o := repair.DefaultOptions()
	if len(c.HeaderRegions) > 0 {
		o.HeaderRegions = append([]repair.Region{}, c.HeaderRegions...)
	}
	if c.ModalID != "" {
		o.ModalID = c.ModalID
	}
	if c.ModalBinding != "" {
		o.ModalBinding = c.ModalBinding
	}
	if len(c.TransitionClasses) > 0 {
		o.TransitionClasses = append([]string{}, c.TransitionClasses...)
	}
	return o
}

// Specs returns the configured CSS specs or the defaults.
func (c Config) Specs() []pagecss.Spec {
	if len(c.CSSSpecs) > 0 {
		return c.CSSSpecs
	}
	return pagecss.DefaultSpecs
}
