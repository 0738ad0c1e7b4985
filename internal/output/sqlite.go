package output

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/campaign-data/donagg/internal/model"
)

// SQLiteTable is the table SQLiteWriter (re)creates.
const SQLiteTable = "donation_totals"

// SQLiteWriter writes totals into a SQLite database file, replacing any
// previous table of the same name.
type SQLiteWriter struct{}

// Format returns the writer name.
func (w *SQLiteWriter) Format() string { return "sqlite" }

// Write creates the table and inserts every total in one transaction.
// Amounts are stored as text to keep them exact.
func (w *SQLiteWriter) Write(path string, totals []model.Total) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DROP TABLE IF EXISTS "` + SQLiteTable + `"`); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	if _, err := tx.Exec(`CREATE TABLE "` + SQLiteTable + `" (
		organization TEXT NOT NULL,
		recipient    TEXT NOT NULL,
		party        TEXT NOT NULL,
		seat         TEXT NOT NULL,
		result       TEXT NOT NULL,
		month        TEXT NOT NULL,
		year         TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		PRIMARY KEY (organization, recipient, party, seat, result, month, year)
	)`); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO "` + SQLiteTable + `" VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range totals {
		k := t.Key
		if _, err := stmt.Exec(k.Organization, k.Recipient, k.Party, k.Seat, k.Result, k.Month, k.Year, model.FormatAmount(t.Amount)); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
