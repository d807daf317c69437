// Package audit reads and writes audit files: the brand under test plus the
// collected prompt runs. Files are YAML, or JSON when the path ends in .json.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dshills/brandlens/internal/schema"
)

// File is the on-disk audit document.
type File struct {
	ID        string            `json:"id" yaml:"id"`
	Brand     string            `json:"brand" yaml:"brand"`
	CreatedAt string            `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Provider  string            `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string            `json:"model,omitempty" yaml:"model,omitempty"`
	Profile   string            `json:"profile,omitempty" yaml:"profile,omitempty"`
	Runs      []schema.RunInput `json:"runs" yaml:"runs"`
}

// RunID formats the sequential id assigned to the n-th run (1-based).
func RunID(n int) string {
	return fmt.Sprintf("RUN-%03d", n)
}

// Load reads and decodes the audit file at path, then fills missing ids.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: read %s", path)
	}
	f, err := Decode(data, isJSON(path))
	if err != nil {
		return nil, eris.Wrapf(err, "audit: decode %s", path)
	}
	zap.L().Debug("audit: loaded",
		zap.String("path", path),
		zap.String("audit_id", f.ID),
		zap.Int("runs", len(f.Runs)),
	)
	return f, nil
}

// Decode parses an audit document and fills missing ids.
func Decode(data []byte, asJSON bool) (*File, error) {
	var f File
	if asJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&f); err != nil {
			return nil, eris.Wrap(err, "audit: json")
		}
	} else if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "audit: yaml")
	}
	f.FillDefaults()
	return &f, nil
}

// FillDefaults assigns a random audit id and sequential run ids where they are
// missing. Existing ids are kept.
func (f *File) FillDefaults() {
	if strings.TrimSpace(f.ID) == "" {
		f.ID = uuid.NewString()
	}
	for i := range f.Runs {
		if strings.TrimSpace(f.Runs[i].ID) == "" {
			f.Runs[i].ID = RunID(i + 1)
		}
	}
}

// Save encodes f to path, creating parent directories as needed. CreatedAt is
// stamped when empty.
func Save(path string, f *File) error {
	if f.CreatedAt == "" {
		f.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := Encode(f, isJSON(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "audit: create dir %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "audit: write %s", path)
	}
	zap.L().Info("audit: saved", zap.String("path", path), zap.Int("runs", len(f.Runs)))
	return nil
}

// Encode serializes f as YAML, or as indented JSON when asJSON is set.
func Encode(f *File, asJSON bool) ([]byte, error) {
	if asJSON {
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "audit: marshal json")
		}
		return append(b, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, eris.Wrap(err, "audit: marshal yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, eris.Wrap(err, "audit: marshal yaml")
	}
	return buf.Bytes(), nil
}

// Validate returns field-level warnings for f. Nothing here prevents analysis:
// empty brands, answers and malformed citations all degrade to zero signals.
func Validate(f *File) []string {
	var msgs []string
	if strings.TrimSpace(f.Brand) == "" {
		msgs = append(msgs, "brand is empty; no mentions can be detected")
	}
	if len(f.Runs) == 0 {
		msgs = append(msgs, "runs is empty")
	}
	seen := make(map[string]int, len(f.Runs))
	for i, r := range f.Runs {
		if j, ok := seen[r.ID]; ok {
			msgs = append(msgs, fmt.Sprintf("runs[%d].id %q duplicates runs[%d]", i, r.ID, j))
		} else {
			seen[r.ID] = i
		}
		if strings.TrimSpace(r.Answer) == "" {
			msgs = append(msgs, fmt.Sprintf("runs[%d].answer is empty", i))
		}
		for k, c := range r.Citations {
			if !isHTTPURL(c) {
				msgs = append(msgs, fmt.Sprintf("runs[%d].citations[%d] %q is not an http(s) URL", i, k, c))
			}
		}
	}
	return msgs
}

func isHTTPURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
