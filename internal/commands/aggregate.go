package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/campaign-data/donagg/internal/config"
	"github.com/campaign-data/donagg/internal/donations"
	"github.com/campaign-data/donagg/internal/entity"
	"github.com/campaign-data/donagg/internal/input"
	"github.com/campaign-data/donagg/internal/logging"
	"github.com/campaign-data/donagg/internal/mapreduce"
	"github.com/campaign-data/donagg/internal/output"
	"github.com/campaign-data/donagg/internal/pipeline"
	"github.com/campaign-data/donagg/internal/runlog"
)

func newAggregateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate <input>...",
		Short: "Total matched donations per organization, recipient and month",
		Long: `Reads donation CSV files (or directories of them), resolves organizations
and recipients through the entity alias map, drops rows whose donor does not
resemble the resolved organization, and writes one total per organization,
recipient, party, seat, result, month and year.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
			if err != nil {
				return err
			}
			return runAggregate(cmd.Context(), cfg, args, cmd.OutOrStdout(), log)
		},
	}

	f := cmd.Flags()
	f.String(config.FlagEntities, "", "entity alias map (.json, .yaml or .yml)")
	f.StringP(config.FlagOutput, "o", output.Stdout, `output path ("-" writes csv to stdout)`)
	f.String(config.FlagFormat, "csv", "output format ("+strings.Join(output.DefaultRegistry().Formats(), ", ")+")")
	f.Bool(config.FlagHeader, false, "write a header line in csv output")
	f.Int(config.FlagWorkers, 0, "concurrent map and reduce tasks (0 means one per CPU)")
	f.Int(config.FlagChunkSize, mapreduce.DefaultChunkSize, "lines per map task")
	f.Int(config.FlagPartitions, mapreduce.DefaultPartitions, "reduce partitions")
	f.Bool(config.FlagNoCombine, false, "skip per-task pre-aggregation")
	f.Int(config.FlagThreshold, entity.DefaultThreshold, "minimum donor/organization score, exclusive (0-100)")
	f.String(config.FlagRunLog, "", "append a summary row to this CSV run log")

	return cmd
}

func runAggregate(ctx context.Context, cfg *config.Config, paths []string, stdout io.Writer, log zerolog.Logger) error {
	if cfg.Entities == "" {
		return errors.New("an entity alias map is required (--entities or entities in the config file)")
	}

	writer, err := selectWriter(cfg.Output, stdout)
	if err != nil {
		return err
	}

	entities, err := entity.Load(cfg.Entities)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}
	log.Debug().Str("path", cfg.Entities).Int("aliases", entities.Len()).Msg("entity map loaded")

	files, err := input.Expand(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no csv input found in %s", strings.Join(paths, ", "))
	}

	job := &pipeline.Job{
		Runner: &mapreduce.Runner{
			Workers:    cfg.Job.Workers,
			ChunkSize:  cfg.Job.ChunkSize,
			Partitions: cfg.Job.Partitions,
			Combine:    cfg.Job.Combine,
			Log:        log,
		},
		Mapper: pipeline.NewMapper(
			donations.NewParser(cfg.Columns, log),
			entity.NewResolver(entities, cfg.Matching.Threshold),
			log,
		),
		Log: log,
	}

	started := time.Now()
	totals, stats, err := job.Run(ctx, files)
	if err != nil {
		return err
	}

	if err := writer.Write(cfg.Output.Path, totals); err != nil {
		return fmt.Errorf("writing %s output: %w", writer.Format(), err)
	}

	if cfg.Log.RunLog != "" {
		inputs := make([]string, len(files))
		for i, f := range files {
			inputs[i] = f.Path
		}
		entry := runlog.NewEntry(started, inputs, cfg.Entities, cfg.Output.Path, stats)
		if err := runlog.Append(cfg.Log.RunLog, []runlog.Entry{entry}); err != nil {
			return fmt.Errorf("writing run log: %w", err)
		}
		log.Info().Str("run_id", entry.RunID).Str("run_log", cfg.Log.RunLog).Msg("run recorded")
	}
	return nil
}

// selectWriter resolves the output format. Only csv may go to stdout.
func selectWriter(out config.OutputConfig, stdout io.Writer) (output.Writer, error) {
	w, err := output.DefaultRegistry().Get(out.Format)
	if err != nil {
		return nil, err
	}
	if w.Format() == "csv" {
		return &output.CSVWriter{Header: out.Header, Out: stdout}, nil
	}
	if out.Path == "" || out.Path == output.Stdout {
		return nil, fmt.Errorf("%s output needs a file path (--output)", w.Format())
	}
	return w, nil
}
