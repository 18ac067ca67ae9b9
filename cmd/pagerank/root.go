package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"Citation_Rank/edgeloader"
	"Citation_Rank/graphprocessing/dataflow"
	"Citation_Rank/pagerank"
	"Citation_Rank/yearly"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

const usage = "Usage: pagerank <end_year> <iteration>"

// usageError is returned for missing or malformed command line arguments.
type usageError struct {
	reason string
}

func (e *usageError) Error() string { return e.reason }

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "pagerank <end_year> <iteration>",
		Short: "Rank the vertices of yearly citation graphs",
		Long: fmt.Sprintf("Runs a fixed number of PageRank iterations over the edge datasets of every\n"+
			"year from %d up to end_year and prints the top %d vertices of each year.", yearly.StartYear, yearly.TopK),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			endYear, iterations, err := parseArgs(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, endYear, iterations, stdout, stderr)
		},
	}
}

func parseArgs(args []string) (endYear, iterations int, err error) {
	if len(args) < 2 {
		return 0, 0, &usageError{reason: "missing arguments"}
	}
	if endYear, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, &usageError{reason: fmt.Sprintf("invalid end_year %q", args[0])}
	} else if endYear < yearly.StartYear {
		return 0, 0, &usageError{reason: fmt.Sprintf("end_year must be at least %d", yearly.StartYear)}
	}
	if iterations, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, &usageError{reason: fmt.Sprintf("invalid iteration %q", args[1])}
	} else if iterations < 0 {
		return 0, 0, &usageError{reason: "iteration must not be negative"}
	}
	return endYear, iterations, nil
}

func run(ctx context.Context, cfg Config, endYear, iterations int, stdout, stderr io.Writer) error {
	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	dc, err := dataflow.NewContext(dataflow.Config{
		Workers:    cfg.Workers,
		Partitions: cfg.Partitions,
		Logger:     logger.WithField("component", "dataflow"),
	})
	if err != nil {
		return err
	}

	fileLoader, err := edgeloader.NewFileLoader(edgeloader.Config{
		Dir:      cfg.DataDir,
		Dataflow: dc,
		Logger:   logger.WithField("component", "edgeloader"),
	})
	if err != nil {
		return err
	}
	var loader edgeloader.Loader = fileLoader
	if cfg.Cumulative {
		loader = edgeloader.Cumulative{Loader: fileLoader, FirstYear: yearly.StartYear}
	}

	engine, err := pagerank.NewEngine(pagerank.Config{
		Logger: logger.WithField("component", "pagerank"),
	})
	if err != nil {
		return err
	}

	driver, err := yearly.NewDriver(yearly.Config{
		Loader: loader,
		Engine: engine,
		Output: stdout,
		Logger: logger.WithField("component", "yearly"),
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"data_dir":   cfg.DataDir,
		"end_year":   endYear,
		"iterations": iterations,
		"workers":    dc.Workers(),
		"partitions": dc.Partitions(),
		"cumulative": cfg.Cumulative,
	}).Info("starting pagerank run")

	return driver.Run(ctx, endYear, iterations)
}

func newLogger(level string, out io.Writer) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("invalid log level: %w", err)
	}

	rootLogger := logrus.New()
	rootLogger.SetOutput(out)
	rootLogger.SetLevel(lvl)
	return logrus.NewEntry(rootLogger).WithField("run_id", uuid.New().String()), nil
}
