package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SkipReason explains why a line or record did not reach aggregation.
type SkipReason string

const (
	SkipNone                   SkipReason = ""
	SkipHeader                 SkipReason = "header"
	SkipMalformed              SkipReason = "malformed"
	SkipEncoding               SkipReason = "encoding"
	SkipBadAmount              SkipReason = "bad-amount"
	SkipBadDate                SkipReason = "bad-date"
	SkipUnresolvedOrganization SkipReason = "unresolved-organization"
	SkipUnresolvedRecipient    SkipReason = "unresolved-recipient"
	SkipLowConfidence          SkipReason = "low-confidence"
)

// SkipReasons lists every non-empty reason in reporting order.
var SkipReasons = []SkipReason{
	SkipHeader,
	SkipMalformed,
	SkipEncoding,
	SkipBadAmount,
	SkipBadDate,
	SkipUnresolvedOrganization,
	SkipUnresolvedRecipient,
	SkipLowConfidence,
}

// DonationRecord is one parsed donation row. Fields are upper-cased and
// stripped of surrounding quote and slash characters.
type DonationRecord struct {
	DonorName          string
	Organization       string
	ParentOrganization string
	Recipient          string
	Party              string
	Date               string // "YYYY-MM-DD"
	Amount             decimal.Decimal
	Seat               string
	Result             string
}

// Key is the group-by identity of the aggregated output.
// Two records land in the same group iff their keys are equal.
type Key struct {
	Organization string
	Recipient    string
	Party        string
	Seat         string
	Result       string
	Month        string
	Year         string
}

// Fields returns the key in output column order.
func (k Key) Fields() []string {
	return []string{k.Organization, k.Recipient, k.Party, k.Seat, k.Result, k.Month, k.Year}
}

// String joins the key fields with commas.
func (k Key) String() string {
	s := k.Organization
	for _, f := range k.Fields()[1:] {
		s += "," + f
	}
	return s
}

// Less orders keys field by field.
func (k Key) Less(o Key) bool {
	a, b := k.Fields(), o.Fields()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Total is one output row: a key and the sum of its amounts.
type Total struct {
	Key    Key
	Amount decimal.Decimal
}

// Row renders the total as output columns, amount last.
func (t Total) Row() []string {
	return append(t.Key.Fields(), FormatAmount(t.Amount))
}

// FormatAmount renders d exactly, padded to at least two decimal places:
// 350.5 is "350.50", 0.125 stays "0.125".
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return s
	}
	return d.StringFixed(2)
}

// Line is one raw input line and where it came from.
type Line struct {
	Source  string
	No      int64 // 1-based within Source
	Text    string
	TooLong bool // Text was dropped for exceeding the reader's line limit
}
