// Package aggregate builds group-by keys for accepted donations and sums
// their amounts.
package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/campaign-data/donagg/internal/donations"
	"github.com/campaign-data/donagg/internal/entity"
	"github.com/campaign-data/donagg/internal/model"
)

// Pair is one map output: a key and a single amount (or a partial sum).
type Pair struct {
	Key    model.Key
	Amount decimal.Decimal
}

// KeyOf builds the aggregation pair for an accepted record from its
// resolved names. The record's date must split into year and month.
func KeyOf(rec model.DonationRecord, res entity.Resolution) (Pair, error) {
	year, month, err := donations.SplitDate(rec.Date)
	if err != nil {
		return Pair{}, fmt.Errorf("building key: %w", err)
	}
	return Pair{
		Key: model.Key{
			Organization: res.Organization,
			Recipient:    res.Recipient,
			Party:        rec.Party,
			Seat:         rec.Seat,
			Result:       rec.Result,
			Month:        month,
			Year:         year,
		},
		Amount: rec.Amount,
	}, nil
}

// Reduce sums every amount delivered for key. Amounts may arrive in any
// order and may themselves be partial sums.
func Reduce(key model.Key, amounts []decimal.Decimal) model.Total {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return model.Total{Key: key, Amount: total}
}

// Combine collapses pairs sharing a key into one partial sum per key,
// keeping first-seen key order.
func Combine(pairs []Pair) []Pair {
	idx := make(map[model.Key]int, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if i, ok := idx[p.Key]; ok {
			out[i].Amount = out[i].Amount.Add(p.Amount)
			continue
		}
		idx[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}
