package donations

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaign-data/donagg/internal/model"
)

type row struct {
	id, amount, date, donor, org, parent, recipient, party, seat, result string
}

// line renders a full-width row with the default layout.
func line(t *testing.T, r row) string {
	t.Helper()
	l := DefaultLayout()
	fields := make([]string, l.MinFields())
	fields[l.ID] = r.id
	fields[l.Amount] = r.amount
	fields[l.Date] = r.date
	fields[l.ContributorName] = r.donor
	fields[l.Organization] = r.org
	fields[l.ParentOrganization] = r.parent
	fields[l.Recipient] = r.recipient
	fields[l.Party] = r.party
	fields[l.Seat] = r.seat
	fields[l.Result] = r.result

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	require.NoError(t, cw.Write(fields))
	cw.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

func validRow() row {
	return row{
		id: "1", amount: "100.00", date: "2016-01-15", donor: "Acme Corp",
		org: "Acme Corp", parent: "Acme Holdings", recipient: "Smith for Senate",
		party: "D", seat: "federal:senate", result: "W",
	}
}

func newTestParser() *Parser {
	return NewParser(DefaultLayout(), zerolog.Nop())
}

func TestParseLine_Valid(t *testing.T) {
	res := newTestParser().ParseLine(2, line(t, validRow()))
	require.True(t, res.OK(), "unexpected skip %q: %v", res.Skip, res.Err)

	rec := res.Record
	assert.Equal(t, "ACME CORP", rec.DonorName)
	assert.Equal(t, "ACME CORP", rec.Organization)
	assert.Equal(t, "ACME HOLDINGS", rec.ParentOrganization)
	assert.Equal(t, "SMITH FOR SENATE", rec.Recipient)
	assert.Equal(t, "D", rec.Party)
	assert.Equal(t, "2016-01-15", rec.Date)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, "FEDERAL:SENATE", rec.Seat)
	assert.Equal(t, "W", rec.Result)
}

func TestParseLine_StripsQuoteAndSlashChars(t *testing.T) {
	r := validRow()
	r.donor = `'/Acme Corp\'`
	r.org = `"Acme Corp"`
	r.result = `\'Won\'`
	res := newTestParser().ParseLine(2, line(t, r))
	require.True(t, res.OK())

	assert.Equal(t, "ACME CORP", res.Record.DonorName)
	assert.Equal(t, "ACME CORP", res.Record.Organization)
	assert.Equal(t, "WON", res.Record.Result)
}

func TestParseLine_ResultDropsInnerEscapes(t *testing.T) {
	r := validRow()
	r.result = `Won\'t`
	res := newTestParser().ParseLine(2, line(t, r))
	require.True(t, res.OK())
	assert.Equal(t, "WONT", res.Record.Result)
}

func TestParseLine_Header(t *testing.T) {
	for _, id := range []string{"id", "ID", "Id", `"id"`} {
		r := validRow()
		r.id = id
		res := newTestParser().ParseLine(1, line(t, r))
		assert.Equal(t, model.SkipHeader, res.Skip, "id %q", id)
		assert.NoError(t, res.Err)
	}
}

func TestParseLine_ShortHeader(t *testing.T) {
	res := newTestParser().ParseLine(1, "id,amount,date")
	assert.Equal(t, model.SkipHeader, res.Skip)
}

func TestParseLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.SkipReason
	}{
		{"short row", `9,"short","row"`, model.SkipMalformed},
		{"unterminated quote", `10,"unterminated,quote`, model.SkipMalformed},
		{"empty line", "", model.SkipMalformed},
		{"invalid utf8", "1,\xff\xfe,2", model.SkipEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result
			assert.NotPanics(t, func() { res = newTestParser().ParseLine(3, tt.line) })
			assert.Equal(t, tt.want, res.Skip)
			assert.Error(t, res.Err)
			assert.False(t, res.OK())
		})
	}
}

func TestParseLine_BadAmount(t *testing.T) {
	for _, amount := range []string{"N/A", "", "ten", "1,000"} {
		r := validRow()
		r.amount = amount
		res := newTestParser().ParseLine(2, line(t, r))
		assert.Equal(t, model.SkipBadAmount, res.Skip, "amount %q", amount)
		if res.Err != nil {
			assert.Contains(t, res.Err.Error(), "parsing amount")
		}
	}
}

func TestParseLine_BadDate(t *testing.T) {
	for _, date := range []string{"", "2016", "01/15/2016", "-01-15", "2016--15"} {
		r := validRow()
		r.date = date
		res := newTestParser().ParseLine(2, line(t, r))
		assert.Equal(t, model.SkipBadDate, res.Skip, "date %q", date)
	}
}

func TestParseLine_LogsCause(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(DefaultLayout(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	p.ParseLine(42, `9,"short","row"`)

	out := buf.String()
	assert.Contains(t, out, `"line":42`)
	assert.Contains(t, out, `"reason":"malformed"`)
	assert.Contains(t, out, "expected at least 42 fields")
}

func TestParseLine_HeaderNotLogged(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(DefaultLayout(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	p.ParseLine(1, "id,a,b")
	assert.Empty(t, buf.String())
}

func TestParseLine_CustomLayout(t *testing.T) {
	l := Layout{ID: 0, Amount: 1, Date: 2, ContributorName: 3, Organization: 4,
		ParentOrganization: 5, Recipient: 6, Party: 7, Seat: 8, Result: 9}
	p := NewParser(l, zerolog.Nop())

	res := p.ParseLine(1, `7,12.5,2020-11-03,jane,org,parent,rec,I,state:house,L`)
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "JANE", res.Record.DonorName)
	assert.Equal(t, "STATE:HOUSE", res.Record.Seat)
	assert.Equal(t, "12.50", res.Record.Amount.StringFixed(2))
}

func TestSplitDate(t *testing.T) {
	year, month, err := SplitDate("2016-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2016", year)
	assert.Equal(t, "01", month)

	year, month, err = SplitDate("2016-03")
	require.NoError(t, err)
	assert.Equal(t, "2016", year)
	assert.Equal(t, "03", month)

	_, _, err = SplitDate("20160115")
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 42, l.MinFields())
	assert.NoError(t, l.Validate())

	l.Seat = -1
	assert.Error(t, l.Validate())
}

func TestParseTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/donations.csv")
	require.NoError(t, err)
	defer f.Close()

	p := newTestParser()
	counts := map[model.SkipReason]int{}
	sc := bufio.NewScanner(f)
	var n int64
	for sc.Scan() {
		n++
		counts[p.ParseLine(n, sc.Text()).Skip]++
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, int64(11), n)
	assert.Equal(t, 1, counts[model.SkipHeader])
	assert.Equal(t, 2, counts[model.SkipMalformed])
	assert.Equal(t, 1, counts[model.SkipBadAmount])
	assert.Equal(t, 7, counts[model.SkipNone])
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"Acme Corp"`, "ACME CORP"},
		{`'acme corp'/`, "ACME CORP"},
		{`\"Smith for Senate\"`, "SMITH FOR SENATE"},
		{`O'Brien`, "O'BRIEN"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}
