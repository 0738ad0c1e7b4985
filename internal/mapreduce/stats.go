package mapreduce

import (
	"github.com/rs/zerolog"

	"github.com/campaign-data/donagg/internal/model"
)

// Stats counts what happened to the input of one job.
type Stats struct {
	Lines    int64
	Accepted int64
	Skipped  map[model.SkipReason]int64
	Groups   int
}

// NewStats returns empty stats.
func NewStats() Stats {
	return Stats{Skipped: make(map[model.SkipReason]int64)}
}

// Merge adds o's line counts into s. Groups is not merged; it is only known
// after the reduce phase.
func (s *Stats) Merge(o Stats) {
	if s.Skipped == nil {
		s.Skipped = make(map[model.SkipReason]int64)
	}
	s.Lines += o.Lines
	s.Accepted += o.Accepted
	for reason, n := range o.Skipped {
		s.Skipped[reason] += n
	}
}

// TotalSkipped sums skips over all reasons.
func (s Stats) TotalSkipped() int64 {
	var n int64
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// MarshalZerologObject lets stats be logged with Event.Object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("lines", s.Lines).
		Int64("accepted", s.Accepted).
		Int("groups", s.Groups)
	for _, reason := range model.SkipReasons {
		if n := s.Skipped[reason]; n > 0 {
			e.Int64(string(reason), n)
		}
	}
}
