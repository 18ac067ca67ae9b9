// Command partition-dataset splits the raw HEP-PH citation dataset into the
// per-year batch and incremental edge files consumed by the pagerank command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"Citation_Rank/dataset"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd := newRootCmd(os.Stderr)
	err := cmd.ExecuteContext(ctx)
	cancelFn()
	if err != nil {
		fmt.Fprintf(os.Stderr, "partition-dataset: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	datesFile     string
	citationsFile string
	outDir        string
	workers       int
	verbose       bool
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "partition-dataset",
		Short:         "Build per-year edge files from the raw citation dataset",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return partition(cmd.Context(), opts, logOut)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.datesFile, "dates", "cit-HepPh-dates.txt", "paper publication dates file")
	flags.StringVar(&opts.citationsFile, "citations", "cit-HepPh.txt", "paper citations file")
	flags.StringVar(&opts.outDir, "out", ".", "directory where the batch and incremental directories are created")
	flags.IntVar(&opts.workers, "workers", 0, "number of files to write in parallel (default: number of CPUs)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	return cmd
}

func partition(ctx context.Context, opts options, logOut io.Writer) error {
	rootLogger := logrus.New()
	rootLogger.SetOutput(logOut)
	if opts.verbose {
		rootLogger.SetLevel(logrus.DebugLevel)
	} else {
		rootLogger.SetLevel(logrus.WarnLevel)
	}
	logger := logrus.NewEntry(rootLogger)

	ix := dataset.NewIndex()
	if err := readFile(opts.datesFile, ix.ReadDates); err != nil {
		return err
	}
	if err := readFile(opts.citationsFile, ix.ReadCitations); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"papers":            ix.Papers(),
		"skipped_citations": ix.Skipped(),
	}).Info("parsed citation dataset")

	w, err := dataset.NewWriter(dataset.Config{
		Dir:     opts.outDir,
		Workers: opts.workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	return w.Write(ctx, ix)
}

func readFile(path string, readFn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("read %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err = readFn(f); err != nil {
		return xerrors.Errorf("read %s: %w", path, err)
	}
	return nil
}
