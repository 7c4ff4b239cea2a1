package capture

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RawSuffix is the file suffix of a stored raw capture.
const RawSuffix = ".outer.html"

// Meta describes a stored raw capture.
type Meta struct {
	Page        string    `json:"page"`
	URL         string    `json:"url"`
	Bytes       int       `json:"bytes"`
	SHA256      string    `json:"sha256"`
	JSONEncoded bool      `json:"json_encoded"`
	CapturedAt  time.Time `json:"captured_at"`
}

// Store keeps raw captures on disk as <page>.outer.html with a
// <page>.meta.json sidecar.
type Store struct {
	Dir string
}

func (s *Store) ensureDir() error {
	if s == nil || s.Dir == "" {
		return errors.New("capture dir not configured")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// RawPath returns the path of the raw capture for page.
func (s *Store) RawPath(page string) string { return filepath.Join(s.Dir, page+RawSuffix) }

func (s *Store) metaPath(page string) string { return filepath.Join(s.Dir, page+".meta.json") }

// Save writes the capture for page. With jsonEncode the HTML is stored as a
// JSON string literal, the shape older automation captures have.
func (s *Store) Save(_ context.Context, page, url, outer string, jsonEncode bool) (Meta, error) {
	if err := s.ensureDir(); err != nil {
		return Meta{}, err
	}
	body := []byte(outer)
	if jsonEncode {
		b, err := json.Marshal(outer)
		if err != nil {
			return Meta{}, fmt.Errorf("encode capture: %w", err)
		}
		body = b
	}
	if err := os.WriteFile(s.RawPath(page), body, 0o644); err != nil {
		return Meta{}, fmt.Errorf("write capture: %w", err)
	}
	sum := sha256.Sum256(body)
	meta := Meta{
		Page:        page,
		URL:         url,
		Bytes:       len(body),
		SHA256:      hex.EncodeToString(sum[:]),
		JSONEncoded: jsonEncode,
		CapturedAt:  time.Now().UTC(),
	}
	tmp := s.metaPath(page) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return Meta{}, fmt.Errorf("create meta: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&meta); err != nil {
		f.Close()
		return Meta{}, fmt.Errorf("encode meta: %w", err)
	}
	if err := f.Close(); err != nil {
		return Meta{}, err
	}
	return meta, os.Rename(tmp, s.metaPath(page))
}

// LoadMeta returns the sidecar for page if present.
func (s *Store) LoadMeta(_ context.Context, page string) (*Meta, error) {
	f, err := os.Open(s.metaPath(page))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m Meta
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
