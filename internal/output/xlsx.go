package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/campaign-data/donagg/internal/model"
)

// XLSXSheet is the worksheet totals are written to.
const XLSXSheet = "Totals"

// XLSXWriter writes totals to a spreadsheet with a header row.
type XLSXWriter struct{}

// Format returns the writer name.
func (w *XLSXWriter) Format() string { return "xlsx" }

// Write saves a new workbook at path. Totals are written as numbers so the
// sheet can be summed, except those a float64 cannot hold exactly, which are
// written as text. All other columns are text.
func (w *XLSXWriter) Write(path string, totals []model.Total) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range totals {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		k := t.Key
		var amount any = model.FormatAmount(t.Amount)
		if v, exact := t.Amount.Float64(); exact {
			amount = v
		}
		row := []any{k.Organization, k.Recipient, k.Party, k.Seat, k.Result, k.Month, k.Year, amount}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
