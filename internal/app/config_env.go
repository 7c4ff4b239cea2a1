package app

import (
	"os"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the commands read.
const EnvPrefix = "PAGESNAP_"

func getenv(key string) string { return strings.TrimSpace(os.Getenv(EnvPrefix + key)) }

// ApplyEnvToConfig populates fields of cfg that still hold their defaults
// from PAGESNAP_* environment variables. Resolve applies it before the
// config file, which then only fills what env left at its default, so env
// beats the file and explicitly set flags beat both.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	d := DefaultConfig()

	setString := func(dst *string, def, key string) {
		if *dst != "" && *dst != def {
			return
		}
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.RawDir, d.RawDir, "RAW_DIR")
	setString(&cfg.OutputDir, d.OutputDir, "OUTPUT_DIR")
	setString(&cfg.Domain, d.Domain, "DOMAIN")
	setString(&cfg.ModalID, "", "MODAL_ID")
	setString(&cfg.ModalBinding, "", "MODAL_BINDING")
	setString(&cfg.CaptureURL, "", "CAPTURE_URL")

	if len(cfg.TransitionClasses) == 0 {
		if v := getenv("TRANSITION_CLASSES"); v != "" {
			cfg.TransitionClasses = splitList(v)
		}
	}

	setDuration := func(dst *time.Duration, def time.Duration, key string) {
		if *dst != 0 && *dst != def {
			return
		}
		if s := getenv(key); s != "" {
			if v, err := time.ParseDuration(s); err == nil {
				*dst = v
			}
		}
	}
	setDuration(&cfg.CaptureWait, 0, "CAPTURE_WAIT")
	setDuration(&cfg.CaptureTimeout, d.CaptureTimeout, "CAPTURE_TIMEOUT")

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		switch strings.ToLower(getenv(key)) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CaptureJSON, "CAPTURE_JSON")
	setBool(&cfg.CaptureScroll, "CAPTURE_SCROLL")
}

// splitList parses a comma or whitespace separated list.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
