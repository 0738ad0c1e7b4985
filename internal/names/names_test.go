package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ACME CORP", "acme"},
		{"ACME HOLDINGS", "acme"},
		{"Acme, Inc.", "acme"},
		{"The Boeing Company", "boeing"},
		{"AT&T Inc", "att"},
		{"Goldman Sachs Group", "goldmansachs"},
		{"  Lockheed   Martin\tCorp ", "lockheedmartin"},
		{"3M Co", "3m"},
		{"INC", ""},
		{"", ""},
		{"I NC", ""},
		{"Café Holdings", "caf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"ACME CORP", "Acme, Inc.", "The Boeing Company", "o f", "I NC",
		"L.L.C.", "Bank of America Corp", "   ", "123 Main St", "Über GmbH",
		"co rp", "SERVICE SERVICES", "A", "J.P. Morgan Chase & Co.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"ACME CORP", "ACME INC", 100},
		{"Microsoft Corp", "Microsoft Corporation", 100},
		{"GOOGLE", "GOOGEL", 83},
		{"abcd", "abce", 75},
		{"abc", "xyz", 0},
		{"", "ACME", 0},
		{"ACME", "", 0},
		{"INC", "CORP", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.a, tt.b), "Score(%q, %q)", tt.a, tt.b)
	}
}

func TestScore_Symmetric(t *testing.T) {
	names := []string{
		"ACME CORP", "ACME INC", "Goldman Sachs", "GOLDMAN SACHS GROUP",
		"Lockheed Martin", "LOCKHEED", "", "INC", "Boeing Co", "Boing",
		"Exxon Mobil Corp", "EXXONMOBIL",
	}
	for _, a := range names {
		for _, b := range names {
			assert.Equal(t, Score(a, b), Score(b, a), "Score(%q, %q)", a, b)
		}
	}
}

func TestScore_SelfIdentity(t *testing.T) {
	for _, a := range []string{"ACME CORP", "x", "Bank of America", "3M"} {
		assert.NotEmpty(t, Normalize(a))
		assert.Equal(t, MaxScore, Score(a, a), "Score(%q, %q)", a, a)
	}
}

func TestScore_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "aaaaaaaaaaaaaaaaaaaaaaaaa"},
		{"verylongcompanyname", "v"},
		{"abc", "cba"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, MaxScore)
	}
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("llc"))
	assert.True(t, IsStopword("technologies"))
	assert.True(t, IsStopword("products"))
	assert.False(t, IsStopword("acme"))
	assert.False(t, IsStopword("LLC"), "stopwords are matched lowercase")
}
