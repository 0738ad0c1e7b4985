// Package entity resolves raw organization and recipient names to their
// authoritative form using a precomputed alias map.
package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyMap is returned when an alias document parses but holds no entries.
var ErrEmptyMap = errors.New("entity map is empty")

// Map is an immutable instance-name -> authoritative-name lookup.
// The zero value is an empty map. Safe for concurrent readers.
type Map struct {
	aliases map[string]string
}

// NewMap copies aliases into a new Map.
func NewMap(aliases map[string]string) Map {
	m := make(map[string]string, len(aliases))
	for k, v := range aliases {
		m[k] = v
	}
	return Map{aliases: m}
}

// Lookup returns the authoritative name for an instance name.
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m.aliases[name]
	return v, ok
}

// Contains reports whether name has a known authoritative form.
func (m Map) Contains(name string) bool {
	_, ok := m.aliases[name]
	return ok
}

// Len returns the number of aliases.
func (m Map) Len() int {
	return len(m.aliases)
}

// Load reads an alias document from disk. Files ending in .yaml or .yml are
// parsed as YAML; everything else as JSON. The document must be a flat
// object of string pairs.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("reading entity map: %w", err)
	}

	var aliases map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &aliases)
	default:
		err = json.Unmarshal(data, &aliases)
	}
	if err != nil {
		return Map{}, fmt.Errorf("parsing entity map %s: %w", path, err)
	}
	if len(aliases) == 0 {
		return Map{}, fmt.Errorf("loading %s: %w", path, ErrEmptyMap)
	}

	// Instance names are compared against upper-cased CSV fields. Keys that
	// are already upper-case win over folded duplicates.
	upper := make(map[string]string, len(aliases))
	for k, v := range aliases {
		if k == strings.ToUpper(k) {
			upper[k] = v
		}
	}
	for k, v := range aliases {
		if _, ok := upper[strings.ToUpper(k)]; !ok {
			upper[strings.ToUpper(k)] = v
		}
	}
	return Map{aliases: upper}, nil
}
