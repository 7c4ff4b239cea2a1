package app

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files into the process environment. Later
// files override earlier ones; missing files are skipped. A variable
// already set to a non-empty value in the process environment wins over
// every file.
func LoadEnvFiles(paths ...string) error {
	fromFiles := map[string]bool{}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		vars, err := godotenv.Read(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v, set := os.LookupEnv(k); set && v != "" && !fromFiles[k] {
				continue
			}
			fromFiles[k] = true
			_ = os.Setenv(k, vars[k])
		}
	}
	return nil
}
