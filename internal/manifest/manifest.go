// Package manifest reads and rewrites the per-package version manifest,
// a TOML document with a [package] table carrying name and version.
// Rewrites touch exactly one line so the rest of the document survives
// byte-for-byte.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/coopersmall/semgate/internal/semver"
)

var (
	// ErrNoPackageTable is returned when the manifest has no [package] table.
	ErrNoPackageTable = errors.New("manifest has no [package] table")

	// ErrNoVersionField is returned when the [package] table declares no version.
	ErrNoVersionField = errors.New("manifest has no package.version field")
)

// document mirrors the subset of the manifest we care about.
type document struct {
	Package *packageTable `toml:"package"`
}

type packageTable struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Manifest is one parsed version manifest. The raw bytes are retained so
// rewrites can preserve formatting.
type Manifest struct {
	Path    string
	Name    string
	Version semver.Version

	raw []byte
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses manifest content. The path is used only for error messages
// and the resulting Manifest's Path field; content may come from a file or
// from a historical ref.
func Parse(path string, data []byte) (*Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if doc.Package == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPackageTable)
	}
	if doc.Package.Version == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVersionField)
	}

	version, err := semver.Parse(doc.Package.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Manifest{
		Path:    path,
		Name:    doc.Package.Name,
		Version: version,
		raw:     data,
	}, nil
}

// WithVersion returns the manifest content with the [package] version field
// set to v. Every other byte of the document, including comments, spacing,
// and field order, is preserved. The receiver is not modified.
func (m *Manifest) WithVersion(v semver.Version) ([]byte, error) {
	lines := bytes.Split(m.raw, []byte("\n"))

	table := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(string(line))

		if strings.HasPrefix(trimmed, "[") {
			table = trimmed
			continue
		}
		if table != "[package]" {
			continue
		}

		key, rest, ok := splitKey(trimmed)
		if !ok || key != "version" {
			continue
		}

		replaced, err := spliceValue(string(line), rest, v.String())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		lines[i] = []byte(replaced)
		return bytes.Join(lines, []byte("\n")), nil
	}

	return nil, fmt.Errorf("%s: %w", m.Path, ErrNoVersionField)
}

// splitKey splits a trimmed TOML line into its key and the text after the
// equals sign. Returns ok=false for lines that are not key/value pairs.
func splitKey(trimmed string) (key, rest string, ok bool) {
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	idx := strings.Index(trimmed, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]), true
}

// spliceValue replaces the quoted version value inside the original
// (untrimmed) line, keeping indentation, spacing around the equals sign,
// and any trailing comment.
func spliceValue(line, rest, newVersion string) (string, error) {
	if len(rest) < 2 || rest[0] != '"' {
		return "", fmt.Errorf("version value is not a quoted string: %q", strings.TrimSpace(line))
	}
	end := strings.Index(rest[1:], `"`)
	if end < 0 {
		return "", fmt.Errorf("version value is not a quoted string: %q", strings.TrimSpace(line))
	}
	oldQuoted := rest[:end+2]

	idx := strings.Index(line, oldQuoted)
	if idx < 0 {
		return "", fmt.Errorf("version value not found in line: %q", strings.TrimSpace(line))
	}
	return line[:idx] + `"` + newVersion + `"` + line[idx+len(oldQuoted):], nil
}
