// Package runlog keeps a CSV history of aggregation runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campaign-data/donagg/internal/mapreduce"
	"github.com/campaign-data/donagg/internal/model"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Inputs    string // semicolon-separated input paths
	Entities  string
	Lines     int64
	Accepted  int64
	Skipped   string // "reason=n" pairs, semicolon-separated
	Groups    int
	Output    string
}

// Header is the CSV header of the run log.
const Header = "timestamp,run_id,inputs,entities,lines,accepted,skipped,groups,output"

const (
	numFields   = 9
	colTime     = 0
	colRunID    = 1
	colInputs   = 2
	colEntities = 3
	colLines    = 4
	colAccepted = 5
	colSkipped  = 6
	colGroups   = 7
	colOutput   = 8
)

// NewEntry describes a finished run under a fresh run ID.
func NewEntry(at time.Time, inputs []string, entities, output string, stats mapreduce.Stats) Entry {
	var skipped []string
	for _, reason := range model.SkipReasons {
		if n := stats.Skipped[reason]; n > 0 {
			skipped = append(skipped, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	return Entry{
		Timestamp: at.UTC(),
		RunID:     uuid.New().String(),
		Inputs:    strings.Join(inputs, ";"),
		Entities:  entities,
		Lines:     stats.Lines,
		Accepted:  stats.Accepted,
		Skipped:   strings.Join(skipped, ";"),
		Groups:    stats.Groups,
		Output:    output,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colInputs] = e.Inputs
	row[colEntities] = e.Entities
	row[colLines] = strconv.FormatInt(e.Lines, 10)
	row[colAccepted] = strconv.FormatInt(e.Accepted, 10)
	row[colSkipped] = e.Skipped
	row[colGroups] = strconv.Itoa(e.Groups)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	lines, err := strconv.ParseInt(record[colLines], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing lines %q: %w", record[colLines], err)
	}
	accepted, err := strconv.ParseInt(record[colAccepted], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing accepted %q: %w", record[colAccepted], err)
	}
	groups, err := strconv.Atoi(record[colGroups])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing groups %q: %w", record[colGroups], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Inputs:    record[colInputs],
		Entities:  record[colEntities],
		Lines:     lines,
		Accepted:  accepted,
		Skipped:   record[colSkipped],
		Groups:    groups,
		Output:    record[colOutput],
	}, nil
}

// Append writes entries to the log at path, creating the file, its
// directory and the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the log at path.
// Returns nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
