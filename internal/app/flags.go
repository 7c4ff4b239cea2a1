package app

import (
	"flag"
	"fmt"
	"strings"
)

// Flags binds the shared command-line surface onto a FlagSet and resolves
// it against the other configuration layers.
type Flags struct {
	fs         *flag.FlagSet
	cfg        Config
	configPath string
	envFiles   string
}

// BindFlags registers the flags every command accepts. With capture set,
// the capture-page flags are registered too.
func BindFlags(fs *flag.FlagSet, capture bool) *Flags {
	f := &Flags{fs: fs, cfg: DefaultConfig()}
	fs.StringVar(&f.cfg.RawDir, "raw", f.cfg.RawDir, "Directory holding <page>.outer.html captures (env PAGESNAP_RAW_DIR)")
	fs.StringVar(&f.cfg.Domain, "domain", f.cfg.Domain, "Production domain rewritten to root-relative paths (env PAGESNAP_DOMAIN)")
	fs.StringVar(&f.configPath, "config", "", "Path to YAML or JSON config file")
	fs.StringVar(&f.envFiles, "env", ".env", "Comma-separated dotenv files to load before reading PAGESNAP_* variables")
	fs.BoolVar(&f.cfg.Verbose, "v", false, "Verbose logging")
	if capture {
		fs.StringVar(&f.cfg.CaptureURL, "url", "", "Page URL to capture (env PAGESNAP_CAPTURE_URL)")
		fs.DurationVar(&f.cfg.CaptureWait, "wait", 0, "Extra wait after the body is ready, e.g. 3s")
		fs.DurationVar(&f.cfg.CaptureTimeout, "timeout", f.cfg.CaptureTimeout, "Overall capture timeout")
		fs.BoolVar(&f.cfg.CaptureJSON, "json", false, "Store the capture JSON string encoded")
		fs.BoolVar(&f.cfg.CaptureScroll, "scroll", false, "Scroll to the bottom before capturing to trigger lazy content")
		return f
	}
	fs.StringVar(&f.cfg.OutputDir, "out", f.cfg.OutputDir, "Directory receiving <page>/ fragment folders (env PAGESNAP_OUTPUT_DIR)")
	fs.BoolVar(&f.cfg.DryRun, "dry-run", false, "Run every pass and log counts without writing")
	fs.BoolVar(&f.cfg.All, "all", false, "Process every capture in the raw directory")
	return f
}

// Resolve layers defaults, config file, environment and explicitly set
// flags, lowest to highest, and validates the result.
func (f *Flags) Resolve() (Config, error) {
	if err := LoadEnvFiles(splitList(f.envFiles)...); err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(f.configPath) != "" {
		fc, err := LoadConfigFile(f.configPath)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		ApplyFileConfig(&cfg, fc)
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "raw":
			cfg.RawDir = f.cfg.RawDir
		case "out":
			cfg.OutputDir = f.cfg.OutputDir
		case "domain":
			cfg.Domain = f.cfg.Domain
		case "v":
			cfg.Verbose = f.cfg.Verbose
		case "dry-run":
			cfg.DryRun = f.cfg.DryRun
		case "all":
			cfg.All = f.cfg.All
		case "url":
			cfg.CaptureURL = f.cfg.CaptureURL
		case "wait":
			cfg.CaptureWait = f.cfg.CaptureWait
		case "timeout":
			cfg.CaptureTimeout = f.cfg.CaptureTimeout
		case "json":
			cfg.CaptureJSON = f.cfg.CaptureJSON
		case "scroll":
			cfg.CaptureScroll = f.cfg.CaptureScroll
		}
	})
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
