package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/campaign-data/donagg/internal/model"
)

// Stdout is the path that sends CSV output to standard output.
const Stdout = "-"

// CSVWriter writes one comma-separated line per total, without a header:
// organization,recipient,party,seat,result,month,year,total_amount.
type CSVWriter struct {
	// Header adds a header line.
	Header bool
	// Out receives output for the Stdout path. Nil means os.Stdout.
	Out io.Writer
}

// Format returns the writer name.
func (w *CSVWriter) Format() string { return "csv" }

// Write writes totals to path, or to Out when path is "-" or empty.
func (w *CSVWriter) Write(path string, totals []model.Total) error {
	if path == "" || path == Stdout {
		out := w.Out
		if out == nil {
			out = os.Stdout
		}
		return w.WriteTo(out, totals)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := w.WriteTo(f, totals); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes totals to an io.Writer.
func (w *CSVWriter) WriteTo(out io.Writer, totals []model.Total) error {
	cw := csv.NewWriter(out)

	if w.Header {
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, t := range totals {
		if err := cw.Write(t.Row()); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
