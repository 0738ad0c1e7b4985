// Package mapreduce runs a map/shuffle/reduce job over input lines on a
// bounded pool of goroutines.
//
// Map tasks own their output and statistics; nothing is shared between
// tasks until the shuffle, which runs after every map task has finished.
// Each key is reduced by exactly one reduce task.
package mapreduce

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/campaign-data/donagg/internal/aggregate"
	"github.com/campaign-data/donagg/internal/model"
)

// Mapper turns one line into an aggregation pair, or reports why the line
// was skipped. Implementations must be safe for concurrent use.
type Mapper interface {
	Map(line model.Line) (aggregate.Pair, model.SkipReason)
}

// MapperFunc adapts a function to Mapper.
type MapperFunc func(line model.Line) (aggregate.Pair, model.SkipReason)

// Map calls f(line).
func (f MapperFunc) Map(line model.Line) (aggregate.Pair, model.SkipReason) { return f(line) }

// Defaults used when a Runner field is zero.
const (
	DefaultChunkSize  = 10000
	DefaultPartitions = 16
)

// Runner executes jobs. The zero value is usable.
type Runner struct {
	Workers    int  // concurrent tasks per phase; 0 means GOMAXPROCS
	ChunkSize  int  // lines per map task
	Partitions int  // reduce tasks
	Combine    bool // sum per key inside each map task before the shuffle
	Log        zerolog.Logger
}

type mapOutput struct {
	pairs []aggregate.Pair
	stats Stats
}

// Run consumes lines until the channel is closed, then shuffles and reduces.
// It returns one total per key, ordered by key.
func (r *Runner) Run(ctx context.Context, lines <-chan model.Line, m Mapper) ([]model.Total, Stats, error) {
	workers, chunkSize, partitions := r.settings()

	outputs, err := r.mapPhase(ctx, lines, m, workers, chunkSize)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := NewStats()
	for _, out := range outputs {
		stats.Merge(out.stats)
	}

	groups := shuffle(outputs, partitions)

	totals, err := reducePhase(ctx, groups, workers)
	if err != nil {
		return nil, Stats{}, err
	}
	stats.Groups = len(totals)

	r.Log.Debug().
		Int("map_tasks", len(outputs)).
		Int("partitions", partitions).
		Int("groups", stats.Groups).
		Msg("job finished")
	return totals, stats, nil
}

func (r *Runner) settings() (workers, chunkSize, partitions int) {
	workers, chunkSize, partitions = r.Workers, r.ChunkSize, r.Partitions
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if partitions <= 0 {
		partitions = DefaultPartitions
	}
	return workers, chunkSize, partitions
}

func (r *Runner) mapPhase(ctx context.Context, lines <-chan model.Line, m Mapper, workers, chunkSize int) ([]*mapOutput, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var outputs []*mapOutput
	dispatch := func(chunk []model.Line) {
		out := &mapOutput{}
		outputs = append(outputs, out)
		g.Go(func() error {
			return r.mapChunk(gctx, chunk, m, out)
		})
	}

	chunk := make([]model.Line, 0, chunkSize)
read:
	for {
		select {
		case <-gctx.Done():
			break read
		case line, ok := <-lines:
			if !ok {
				break read
			}
			chunk = append(chunk, line)
			if len(chunk) == chunkSize {
				dispatch(chunk)
				chunk = make([]model.Line, 0, chunkSize)
			}
		}
	}
	if len(chunk) > 0 && gctx.Err() == nil {
		dispatch(chunk)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The input may have stopped because the caller's context ended.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (r *Runner) mapChunk(ctx context.Context, chunk []model.Line, m Mapper, out *mapOutput) error {
	out.stats = NewStats()
	for _, line := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		out.stats.Lines++
		pair, reason := r.mapLine(m, line)
		if reason != model.SkipNone {
			out.stats.Skipped[reason]++
			continue
		}
		out.stats.Accepted++
		out.pairs = append(out.pairs, pair)
	}
	if r.Combine {
		out.pairs = aggregate.Combine(out.pairs)
	}
	return nil
}

// mapLine isolates a panicking mapper to the line that caused it.
func (r *Runner) mapLine(m Mapper, line model.Line) (pair aggregate.Pair, reason model.SkipReason) {
	defer func() {
		if p := recover(); p != nil {
			r.Log.Warn().
				Str("source", line.Source).
				Int64("line", line.No).
				Str("panic", fmt.Sprint(p)).
				Msg("mapper panicked; skipping line")
			pair, reason = aggregate.Pair{}, model.SkipMalformed
		}
	}()
	return m.Map(line)
}

// Partition assigns a key to one of n reduce partitions.
func Partition(key model.Key, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	for _, f := range key.Fields() {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return int(h.Sum32() % uint32(n))
}

type group struct {
	key     model.Key
	amounts []decimal.Decimal
}

// shuffle routes every pair to its partition and groups by exact key.
func shuffle(outputs []*mapOutput, partitions int) [][]*group {
	index := make([]map[model.Key]*group, partitions)
	parts := make([][]*group, partitions)
	for i := range index {
		index[i] = make(map[model.Key]*group)
	}
	for _, out := range outputs {
		for _, p := range out.pairs {
			n := Partition(p.Key, partitions)
			g, ok := index[n][p.Key]
			if !ok {
				g = &group{key: p.Key}
				index[n][p.Key] = g
				parts[n] = append(parts[n], g)
			}
			g.amounts = append(g.amounts, p.Amount)
		}
	}
	return parts
}

func reducePhase(ctx context.Context, parts [][]*group, workers int) ([]model.Total, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make([][]model.Total, len(parts))
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			totals := make([]model.Total, 0, len(part))
			for _, grp := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				totals = append(totals, aggregate.Reduce(grp.key, grp.amounts))
			}
			results[i] = totals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totals []model.Total
	for _, res := range results {
		totals = append(totals, res...)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Key.Less(totals[j].Key) })
	return totals, nil
}
