// Package yearly runs the PageRank pipeline over a range of yearly edge
// datasets and reports the top-ranked vertices of each year.
package yearly

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"Citation_Rank/edgeloader"
	"Citation_Rank/graphprocessing/dataflow"
	"Citation_Rank/pagerank"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

const (
	// StartYear is the first year of every run.
	StartYear = 1992

	// TopK is the number of vertices reported per year.
	TopK = 5
)

// Engine is implemented by types that can run the rank-propagation
// iterations for a graph.
type Engine interface {
	RunIterations(
		ctx context.Context,
		adjacency *dataflow.Collection[pagerank.AdjacencyList],
		initialRanks pagerank.RankTable,
		baseContrib *dataflow.Collection[pagerank.VertexRank],
		count int,
	) (pagerank.RankTable, error)
}

// Config encapsulates the settings for configuring a Driver.
type Config struct {
	// The loader for the per-year edge datasets.
	Loader edgeloader.Loader

	// The engine that runs the PageRank iterations.
	Engine Engine

	// The writer where yearly reports are written. If not specified,
	// reports are written to os.Stdout.
	Output io.Writer

	// A clock instance for measuring the time spent on each year. If not
	// specified, the wall-clock will be used.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Loader == nil {
		err = multierror.Append(err, xerrors.Errorf("edge loader has not been provided"))
	}
	if cfg.Engine == nil {
		err = multierror.Append(err, xerrors.Errorf("pagerank engine has not been provided"))
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Report holds the outcome of ranking the graph of a single year.
type Report struct {
	Year     int
	Vertices int
	Edges    int
	Top      []pagerank.VertexRank
}

// WriteTo implements io.WriterTo. The report is emitted with a single Write
// call.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- year %d top %d ---\n", r.Year, TopK)
	for _, vr := range r.Top {
		fmt.Fprintf(&buf, "%s has rank: %.12f\n", vr.Key, vr.Value)
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Driver ranks the graphs of consecutive years.
type Driver struct {
	cfg Config
}

// NewDriver returns a new Driver instance using the provided config.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("yearly driver: config validation failed: %w", err)
	}
	return &Driver{cfg: cfg}, nil
}

// Run ranks every year from StartYear up to and including endYear and writes
// the report of each year once its pipeline completes. The first failure
// aborts the run; nothing is written for the failed year.
func (d *Driver) Run(ctx context.Context, endYear, iterations int) error {
	if iterations < 0 {
		return xerrors.Errorf("yearly driver: invalid iteration count %d", iterations)
	}

	for year := StartYear; year <= endYear; year++ {
		report, err := d.RankYear(ctx, year, iterations)
		if err != nil {
			return xerrors.Errorf("year %d: %w", year, err)
		}
		if _, err = report.WriteTo(d.cfg.Output); err != nil {
			return xerrors.Errorf("year %d: write report: %w", year, err)
		}
	}
	return nil
}

// RankYear runs the full pipeline for a single year: load, build the graph,
// iterate, normalize and extract the top vertices.
func (d *Driver) RankYear(ctx context.Context, year, iterations int) (*Report, error) {
	start := d.cfg.Clock.Now()

	lines, err := d.cfg.Loader.Lines(ctx, year)
	if err != nil {
		return nil, err
	}

	g := pagerank.BuildGraph(lines)
	numEdges, err := g.Edges.Count(ctx)
	if err != nil {
		return nil, err
	}
	numVertices, err := g.Universe.Count(ctx)
	if err != nil {
		return nil, err
	}

	ranks, err := d.cfg.Engine.RunIterations(
		ctx,
		g.Adjacency,
		pagerank.InitializeRanks(g.Universe),
		pagerank.BaseContributions(g.Universe),
		iterations,
	)
	if err != nil {
		return nil, err
	}

	if ranks, err = ranks.Normalize(ctx); err != nil {
		return nil, err
	}
	top, err := ranks.TopK(ctx, TopK)
	if err != nil {
		return nil, err
	}

	d.cfg.Logger.WithFields(logrus.Fields{
		"year":         year,
		"vertices":     numVertices,
		"edges":        numEdges,
		"iterations":   iterations,
		"elapsed_time": d.cfg.Clock.Now().Sub(start).String(),
	}).Info("ranked yearly graph")

	return &Report{
		Year:     year,
		Vertices: numVertices,
		Edges:    numEdges,
		Top:      top,
	}, nil
}
