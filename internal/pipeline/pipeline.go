// Package pipeline wires the donation parser, entity resolver and key
// builder into a map function and runs it over input files.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/campaign-data/donagg/internal/aggregate"
	"github.com/campaign-data/donagg/internal/donations"
	"github.com/campaign-data/donagg/internal/entity"
	"github.com/campaign-data/donagg/internal/input"
	"github.com/campaign-data/donagg/internal/mapreduce"
	"github.com/campaign-data/donagg/internal/model"
)

// lineBuffer is the capacity of the channel between the file reader and
// the map dispatcher.
const lineBuffer = 4096

// Mapper turns a raw donation line into an aggregation pair.
type Mapper struct {
	parser   *donations.Parser
	resolver *entity.Resolver
	log      zerolog.Logger
}

// NewMapper creates a Mapper. Both collaborators are read-only, so one
// Mapper serves every map task.
func NewMapper(parser *donations.Parser, resolver *entity.Resolver, log zerolog.Logger) *Mapper {
	return &Mapper{parser: parser, resolver: resolver, log: log}
}

// Map implements mapreduce.Mapper.
func (m *Mapper) Map(line model.Line) (aggregate.Pair, model.SkipReason) {
	if line.TooLong {
		m.log.Debug().
			Str("source", line.Source).
			Int64("line", line.No).
			Str("reason", string(model.SkipMalformed)).
			Msg("line exceeds length limit")
		return aggregate.Pair{}, model.SkipMalformed
	}
	parsed := m.parser.ParseLine(line.No, line.Text)
	if !parsed.OK() {
		return aggregate.Pair{}, parsed.Skip
	}

	rec := parsed.Record
	res, score, reason := m.resolver.Accept(rec)
	if reason != model.SkipNone {
		m.log.Debug().
			Str("source", line.Source).
			Int64("line", line.No).
			Str("reason", string(reason)).
			Str("donor", rec.DonorName).
			Str("organization", res.Organization).
			Int("score", score).
			Msg("record rejected")
		return aggregate.Pair{}, reason
	}

	pair, err := aggregate.KeyOf(rec, res)
	if err != nil {
		return aggregate.Pair{}, model.SkipBadDate
	}
	return pair, model.SkipNone
}

// Job aggregates donation files.
type Job struct {
	Runner *mapreduce.Runner
	Mapper mapreduce.Mapper
	Log    zerolog.Logger
}

// Run streams files through the mapper and returns one total per key.
func (j *Job) Run(ctx context.Context, files []input.FileInfo) ([]model.Total, mapreduce.Stats, error) {
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan model.Line, lineBuffer)

	g.Go(func() error {
		defer close(lines)
		return input.Stream(gctx, files, lines)
	})

	var (
		totals []model.Total
		stats  mapreduce.Stats
	)
	g.Go(func() error {
		var err error
		totals, stats, err = j.Runner.Run(gctx, lines, j.Mapper)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, mapreduce.Stats{}, fmt.Errorf("aggregating donations: %w", err)
	}

	j.Log.Info().
		Int("files", len(files)).
		Object("stats", stats).
		Msg("aggregation complete")
	return totals, stats, nil
}
