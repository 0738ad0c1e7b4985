package donations

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/campaign-data/donagg/internal/model"
)

// HeaderSentinel is the first column of the header row.
const HeaderSentinel = "id"

// Result is the outcome of parsing one line: either a record (Skip is
// SkipNone) or the reason the line was skipped. Err carries the cause for
// malformed lines and is nil for headers.
type Result struct {
	Record model.DonationRecord
	Skip   model.SkipReason
	Err    error
}

// OK reports whether the line produced a record.
func (r Result) OK() bool { return r.Skip == model.SkipNone }

// Parser turns raw lines into donation records. It is stateless apart from
// its configuration and may be shared between goroutines.
type Parser struct {
	layout Layout
	log    zerolog.Logger
}

// NewParser creates a Parser for the given layout.
func NewParser(layout Layout, log zerolog.Logger) *Parser {
	return &Parser{layout: layout, log: log}
}

// ParseLine parses one delimited line. It never panics and never returns an
// error: a corrupt line is reported through Result.Skip and logged, so one
// bad row cannot stop a batch. lineNo is used for logging only.
func (p *Parser) ParseLine(lineNo int64, line string) Result {
	res := p.parse(line)
	if res.Err != nil {
		p.log.Debug().
			Int64("line", lineNo).
			Str("reason", string(res.Skip)).
			Err(res.Err).
			Msg("skipping line")
	}
	return res
}

func (p *Parser) parse(line string) Result {
	if !utf8.ValidString(line) {
		return skip(model.SkipEncoding, fmt.Errorf("invalid UTF-8"))
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return skip(model.SkipMalformed, fmt.Errorf("splitting fields: %w", err))
	}
	for i := range fields {
		fields[i] = Clean(fields[i])
	}

	if p.layout.ID < len(fields) && strings.EqualFold(fields[p.layout.ID], HeaderSentinel) {
		return Result{Skip: model.SkipHeader}
	}
	if want := p.layout.MinFields(); len(fields) < want {
		return skip(model.SkipMalformed, fmt.Errorf("expected at least %d fields, got %d", want, len(fields)))
	}

	amount, err := decimal.NewFromString(fields[p.layout.Amount])
	if err != nil {
		return skip(model.SkipBadAmount, fmt.Errorf("parsing amount %q: %w", fields[p.layout.Amount], err))
	}

	date := fields[p.layout.Date]
	if _, _, err := SplitDate(date); err != nil {
		return skip(model.SkipBadDate, err)
	}

	result := strings.NewReplacer(`\`, "", "'", "").Replace(fields[p.layout.Result])

	return Result{Record: model.DonationRecord{
		DonorName:          fields[p.layout.ContributorName],
		Organization:       fields[p.layout.Organization],
		ParentOrganization: fields[p.layout.ParentOrganization],
		Recipient:          fields[p.layout.Recipient],
		Party:              fields[p.layout.Party],
		Date:               date,
		Amount:             amount,
		Seat:               fields[p.layout.Seat],
		Result:             result,
	}}
}

// SplitDate returns the year and month of a "YYYY-MM-DD" style date.
// Anything after the month (day, time) is ignored.
func SplitDate(date string) (year, month string, err error) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid date %q", date)
	}
	return parts[0], parts[1], nil
}

// Clean strips surrounding quote and slash characters and upper-cases, as
// the parser does to every field.
func Clean(field string) string {
	return strings.ToUpper(strings.Trim(field, `'"\/`))
}

func skip(reason model.SkipReason, err error) Result {
	return Result{Skip: reason, Err: err}
}
