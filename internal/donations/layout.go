// Package donations parses raw donation lines into typed records.
package donations

import "fmt"

// Layout gives the zero-based column of every field the job reads.
// The defaults match the bulk contribution export the job was built for.
type Layout struct {
	ID                 int `yaml:"id" toml:"id"`
	Amount             int `yaml:"amount" toml:"amount"`
	Date               int `yaml:"date" toml:"date"`
	ContributorName    int `yaml:"contributor_name" toml:"contributor_name"`
	Organization       int `yaml:"organization" toml:"organization"`
	ParentOrganization int `yaml:"parent_organization" toml:"parent_organization"`
	Recipient          int `yaml:"recipient" toml:"recipient"`
	Party              int `yaml:"party" toml:"party"`
	Seat               int `yaml:"seat" toml:"seat"`
	Result             int `yaml:"result" toml:"result"`
}

// DefaultLayout returns the column layout of the contribution export.
func DefaultLayout() Layout {
	return Layout{
		ID:                 0,
		Amount:             8,
		Date:               9,
		ContributorName:    10,
		Organization:       21,
		ParentOrganization: 23,
		Recipient:          25,
		Party:              27,
		Seat:               36,
		Result:             41,
	}
}

func (l Layout) columns() []int {
	return []int{
		l.ID, l.Amount, l.Date, l.ContributorName, l.Organization,
		l.ParentOrganization, l.Recipient, l.Party, l.Seat, l.Result,
	}
}

// MinFields is the shortest row that holds every column in the layout.
func (l Layout) MinFields() int {
	highest := 0
	for _, c := range l.columns() {
		if c > highest {
			highest = c
		}
	}
	return highest + 1
}

// Validate rejects negative column indices.
func (l Layout) Validate() error {
	for _, c := range l.columns() {
		if c < 0 {
			return fmt.Errorf("column index %d is negative", c)
		}
	}
	return nil
}
