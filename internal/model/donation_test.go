package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKey_FieldsOrder(t *testing.T) {
	k := Key{Organization: "ORG", Recipient: "REC", Party: "D", Seat: "SEAT", Result: "WIN", Month: "01", Year: "2016"}
	assert.Equal(t, []string{"ORG", "REC", "D", "SEAT", "WIN", "01", "2016"}, k.Fields())
	assert.Equal(t, "ORG,REC,D,SEAT,WIN,01,2016", k.String())
}

func TestKey_Less(t *testing.T) {
	a := Key{Organization: "A", Year: "2016"}
	b := Key{Organization: "A", Year: "2017"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestTotal_Row(t *testing.T) {
	total := Total{
		Key:    Key{Organization: "ORG", Recipient: "REC", Party: "D", Seat: "SEAT", Result: "WIN", Month: "01", Year: "2016"},
		Amount: decimal.RequireFromString("350.5"),
	}
	assert.Equal(t, []string{"ORG", "REC", "D", "SEAT", "WIN", "01", "2016", "350.50"}, total.Row())
}

func TestTotal_RowKeepsSubCentPrecision(t *testing.T) {
	total := Total{
		Key:    Key{Organization: "ACME INC", Recipient: "JANE SMITH", Party: "D", Seat: "S", Result: "W", Month: "01", Year: "2016"},
		Amount: decimal.RequireFromString("0.125"),
	}
	assert.Equal(t, "0.125", total.Row()[7])
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"350.5", "350.50"},
		{"500", "500.00"},
		{"0.125", "0.125"},
		{"12.3400", "12.34"},
		{"1.00001", "1.00001"},
		{"-7.5", "-7.50"},
		{"0", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatAmount_SumOfSubCentValues(t *testing.T) {
	sum := decimal.RequireFromString("0.125").Add(decimal.RequireFromString("0.0625"))
	assert.Equal(t, "0.1875", FormatAmount(sum))
}
