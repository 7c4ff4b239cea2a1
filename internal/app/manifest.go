package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperifyio/pagesnap/internal/decode"
	"github.com/hyperifyio/pagesnap/internal/pagecss"
	"github.com/hyperifyio/pagesnap/internal/repair"
	"github.com/hyperifyio/pagesnap/internal/validate"
)

// Manifest describes a page directory so a re-run can be diffed against
// the previous one. It carries no timestamps.
type Manifest struct {
	Page    string                      `json:"page"`
	Version string                      `json:"version"`
	Commit  string                      `json:"commit,omitempty"`
	Source  *SourceInfo                 `json:"source,omitempty"`
	Files   []FileEntry                 `json:"files"`
	Missing []MissingEntry              `json:"missing,omitempty"`
	Repairs map[string][]repair.Result  `json:"repairs,omitempty"`
	Issues  map[string][]validate.Issue `json:"issues,omitempty"`
	CSS     *pagecss.Result             `json:"css,omitempty"`
}

// SourceInfo identifies the capture a page was built from.
type SourceInfo struct {
	Path     string        `json:"path"`
	URL      string        `json:"url,omitempty"`
	SHA256   string        `json:"sha256"`
	Bytes    int           `json:"bytes"`
	Decode   decode.Method `json:"decode"`
	Residual bool          `json:"residualEscapes,omitempty"`
}

// FileEntry is one written output file.
type FileEntry struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// MissingEntry is a section whose marker could not be found.
type MissingEntry struct {
	Section string `json:"section"`
	Marker  string `json:"marker"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func newSourceInfo(path, url, raw string, dec decode.Result) *SourceInfo {
	return &SourceInfo{
		Path:     filepath.ToSlash(path),
		URL:      url,
		SHA256:   computeSHA256Hex(raw),
		Bytes:    len(raw),
		Decode:   dec.Method,
		Residual: dec.Residual,
	}
}

// loadManifest reads dir's manifest. A missing file yields an empty one.
func loadManifest(dir string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// writeManifest refreshes the file list from dir, then writes the manifest
// followed by SHA256SUMS.
func writeManifest(dir string, m Manifest) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	m.Files = files
	m.Version = BuildVersion
	m.Commit = BuildCommit
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return writeSHA256SUMS(dir)
}

// listFiles hashes every regular file in dir except the bookkeeping files.
func listFiles(dir string) ([]FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []FileEntry{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == ManifestFile || name == SumsFile || strings.HasPrefix(name, ".") {
			continue
		}
		sum, n, err := sha256File(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, FileEntry{Name: name, SHA256: sum, Bytes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// writeSHA256SUMS writes sha256sum-compatible lines for every file in dir.
func writeSHA256SUMS(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == SumsFile || strings.HasPrefix(name, ".") {
			continue
		}
		sum, _, err := sha256File(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		b.WriteString(sum)
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return os.WriteFile(filepath.Join(dir, SumsFile), []byte(b.String()), 0o644)
}

func sha256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
