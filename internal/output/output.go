// Package output writes aggregated donation totals.
package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/campaign-data/donagg/internal/model"
)

// ErrUnknownFormat is returned for a format no writer is registered for.
var ErrUnknownFormat = errors.New("unknown output format")

// Columns is the header of every tabular output.
var Columns = []string{"organization", "recipient", "party", "seat", "result", "month", "year", "total_amount"}

// Writer persists totals to a destination path.
type Writer interface {
	Write(path string, totals []model.Total) error
	Format() string
}

// Registry holds writers by format name.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// Register adds a writer. Panics on duplicate format.
func (r *Registry) Register(w Writer) {
	key := strings.ToLower(w.Format())
	if _, ok := r.writers[key]; ok {
		panic("duplicate output format: " + key)
	}
	r.writers[key] = w
}

// Get returns the writer for format.
func (r *Registry) Get(format string) (Writer, error) {
	w, ok := r.writers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownFormat, format, strings.Join(r.Formats(), ", "))
	}
	return w, nil
}

// Formats lists registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.writers))
	for k := range r.writers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in writers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVWriter{})
	r.Register(&SQLiteWriter{})
	r.Register(&XLSXWriter{})
	return r
}
