package app

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestFlags_ResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pagesnap.yaml")
	if err := os.WriteFile(cfgPath, []byte("rawDir: file-raw\noutputDir: file-out\ndomain: file.example\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PAGESNAP_OUTPUT_DIR", "env-out")
	t.Setenv("PAGESNAP_DOMAIN", "env.example")

	fs := flag.NewFlagSet("split-page-html", flag.ContinueOnError)
	f := BindFlags(fs, false)
	args := []string{"-config", cfgPath, "-env", filepath.Join(dir, "none.env"), "-domain", "flag.example", "-dry-run", "home"}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := f.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.RawDir != "file-raw" {
		t.Fatalf("RawDir=%q, want file value", cfg.RawDir)
	}
	if cfg.OutputDir != "env-out" {
		t.Fatalf("OutputDir=%q, want env over file", cfg.OutputDir)
	}
	if cfg.Domain != "flag.example" || !cfg.DryRun {
		t.Fatalf("explicit flags lost: %+v", cfg)
	}
	if fs.Arg(0) != "home" {
		t.Fatalf("args=%v", fs.Args())
	}
}

func TestFlags_CaptureSet(t *testing.T) {
	fs := flag.NewFlagSet("capture-page", flag.ContinueOnError)
	f := BindFlags(fs, true)
	if fs.Lookup("out") != nil || fs.Lookup("url") == nil {
		t.Fatalf("capture flag set should have url and no out")
	}
	if err := fs.Parse([]string{"-env", "", "-url", "https://example.org/", "-json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := f.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.CaptureURL != "https://example.org/" || !cfg.CaptureJSON || cfg.CaptureTimeout != DefaultConfig().CaptureTimeout {
		t.Fatalf("cfg=%+v", cfg)
	}
}
