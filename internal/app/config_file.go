package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/pagesnap/internal/pagecss"
	"github.com/hyperifyio/pagesnap/internal/repair"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	RawDir    string `yaml:"rawDir" json:"rawDir"`
	OutputDir string `yaml:"outputDir" json:"outputDir"`
	Domain    string `yaml:"domain" json:"domain"`
	DryRun    bool   `yaml:"dryRun" json:"dryRun"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`

	Header struct {
		Regions []repair.Region `yaml:"regions" json:"regions"`
	} `yaml:"header" json:"header"`

	Modal struct {
		ID      string `yaml:"id" json:"id"`
		Binding string `yaml:"binding" json:"binding"`
	} `yaml:"modal" json:"modal"`

	Transition struct {
		Classes []string `yaml:"classes" json:"classes"`
	} `yaml:"transition" json:"transition"`

	CSS []pagecss.Spec `yaml:"css" json:"css"`

	Capture struct {
		URL     string        `yaml:"url" json:"url"`
		Wait    time.Duration `yaml:"wait" json:"wait"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
		JSON    bool          `yaml:"json" json:"json"`
		Scroll  bool          `yaml:"scroll" json:"scroll"`
	} `yaml:"capture" json:"capture"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg wherever cfg still holds
// its default, so explicitly set flags win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	d := DefaultConfig()
	if (cfg.RawDir == "" || cfg.RawDir == d.RawDir) && fc.RawDir != "" {
		cfg.RawDir = fc.RawDir
	}
	if (cfg.OutputDir == "" || cfg.OutputDir == d.OutputDir) && fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if (cfg.Domain == "" || cfg.Domain == d.Domain) && fc.Domain != "" {
		cfg.Domain = fc.Domain
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if len(cfg.HeaderRegions) == 0 && len(fc.Header.Regions) > 0 {
		cfg.HeaderRegions = append([]repair.Region{}, fc.Header.Regions...)
	}
	if cfg.ModalID == "" && fc.Modal.ID != "" {
		cfg.ModalID = fc.Modal.ID
	}
	if cfg.ModalBinding == "" && fc.Modal.Binding != "" {
		cfg.ModalBinding = fc.Modal.Binding
	}
	if len(cfg.TransitionClasses) == 0 && len(fc.Transition.Classes) > 0 {
		cfg.TransitionClasses = append([]string{}, fc.Transition.Classes...)
	}
	if len(cfg.CSSSpecs) == 0 && len(fc.CSS) > 0 {
		cfg.CSSSpecs = append([]pagecss.Spec{}, fc.CSS...)
	}

	if cfg.CaptureURL == "" && fc.Capture.URL != "" {
		cfg.CaptureURL = fc.Capture.URL
	}
	if cfg.CaptureWait == 0 && fc.Capture.Wait > 0 {
		cfg.CaptureWait = fc.Capture.Wait
	}
	if (cfg.CaptureTimeout == 0 || cfg.CaptureTimeout == d.CaptureTimeout) && fc.Capture.Timeout > 0 {
		cfg.CaptureTimeout = fc.Capture.Timeout
	}
	if !cfg.CaptureJSON && fc.Capture.JSON {
		cfg.CaptureJSON = true
	}
	if !cfg.CaptureScroll && fc.Capture.Scroll {
		cfg.CaptureScroll = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.RawDir) == "" {
		return errors.New("config: raw input dir is required")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("config: output dir is required")
	}
	if strings.TrimSpace(cfg.Domain) == "" {
		return errors.New("config: site domain is required")
	}
	if strings.Contains(cfg.Domain, "/") {
		return fmt.Errorf("config: domain %q must be a bare host", cfg.Domain)
	}
	for _, r := range cfg.HeaderRegions {
		if strings.TrimSpace(r.Class) == "" || strings.TrimSpace(r.Show) == "" {
			return errors.New("config: header regions need class and show")
		}
	}
	for _, s := range cfg.CSSSpecs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if cfg.CaptureWait < 0 || cfg.CaptureTimeout < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	return nil
}
