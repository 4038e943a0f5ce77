package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML ordinance. Tables the document omits keep their
// built-in values; a table that is present replaces the built-in one per
// top-level key. Unknown fields are rejected.
func Parse(r io.Reader) (*Ruleset, error) {
	rs := Default()
	rs.Version = ""
	rs.Description = ""

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(rs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrLoadRuleset, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// LoadFile reads and parses one ordinance file.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadRuleset, err)
	}
	rs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rs, nil
}

// LoadDir parses every *.yaml and *.yml file in dir, in file-name order.
func LoadDir(dir string) ([]*Ruleset, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadRuleset, err)
		}
		paths = append(paths, m...)
	}
	slices.Sort(paths)

	out := make([]*Ruleset, 0, len(paths))
	for _, p := range paths {
		rs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

// Encode writes rs as YAML. It is the inverse of Parse and is used to export
// the built-in ordinance as a starting point for a new cycle.
func Encode(w io.Writer, rs *Ruleset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return err
	}
	return enc.Close()
}
