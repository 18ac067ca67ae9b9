// Package edgeloader provides access to the per-year edge datasets. Each
// dataset is a text file named {year}-edges.txt that contains one
// "source destination" edge per line.
package edgeloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"

	"Citation_Rank/graphprocessing/dataflow"
	"Citation_Rank/pipeline"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrDatasetMissing is returned when the dataset file for a year does not exist.
var ErrDatasetMissing = xerrors.New("dataset file does not exist")

// Loader is implemented by types that can yield the raw edge lines for a year.
type Loader interface {
	// Lines returns a collection with the unparsed lines of the dataset
	// for the specified year.
	Lines(ctx context.Context, year int) (*dataflow.Collection[string], error)
}

// Config encapsulates the settings for configuring a FileLoader.
type Config struct {
	// The directory that contains the {year}-edges.txt files.
	Dir string

	// The dataflow context used for creating line collections.
	Dataflow *dataflow.Context

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Dir == "" {
		err = multierror.Append(err, xerrors.Errorf("dataset directory has not been specified"))
	}
	if cfg.Dataflow == nil {
		err = multierror.Append(err, xerrors.Errorf("dataflow context has not been provided"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// FileLoader reads edge datasets from the local filesystem.
type FileLoader struct {
	cfg  Config
	pipe *pipeline.Pipeline
}

// NewFileLoader returns a new FileLoader instance using the provided config.
func NewFileLoader(cfg Config) (*FileLoader, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("edge loader: config validation failed: %w", err)
	}
	return &FileLoader{
		cfg:  cfg,
		pipe: pipeline.New(pipeline.FIFO(newLineNormalizer())),
	}, nil
}

// Path returns the location of the dataset file for the specified year.
func (l *FileLoader) Path(year int) string {
	return filepath.Join(l.cfg.Dir, fmt.Sprintf("%d-edges.txt", year))
}

// Lines implements Loader. The whole file is read before Lines returns so
// that a missing or unreadable dataset is reported immediately.
func (l *FileLoader) Lines(ctx context.Context, year int) (*dataflow.Collection[string], error) {
	path := l.Path(year)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, xerrors.Errorf("load %s: %w", path, ErrDatasetMissing)
		}
		return nil, xerrors.Errorf("load %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sink := new(lineSink)
	if err := l.pipe.Process(ctx, newLineSource(f), sink); err != nil {
		return nil, xerrors.Errorf("load %s: %w", path, err)
	} else if err = ctx.Err(); err != nil {
		// The source stops early once the context expires.
		return nil, xerrors.Errorf("load %s: %w", path, err)
	}

	l.cfg.Logger.WithFields(logrus.Fields{
		"year":  year,
		"path":  path,
		"lines": len(sink.lines),
	}).Debug("loaded edge dataset")

	return dataflow.Parallelize(l.cfg.Dataflow, fmt.Sprintf("edges-%d", year), sink.lines), nil
}

// Cumulative is a Loader that assembles the dataset of a year from the
// datasets of all years in [FirstYear, year]. It is meant to be used with
// incremental datasets where each file only holds the edges introduced in
// that year.
type Cumulative struct {
	Loader    Loader
	FirstYear int
}

// Lines implements Loader.
func (c Cumulative) Lines(ctx context.Context, year int) (*dataflow.Collection[string], error) {
	var all *dataflow.Collection[string]
	for y := c.FirstYear; y <= year; y++ {
		lines, err := c.Loader.Lines(ctx, y)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = lines
			continue
		}
		all = all.Union(lines)
	}
	if all == nil {
		return nil, xerrors.Errorf("cumulative load for year %d before first year %d: %w", year, c.FirstYear, ErrDatasetMissing)
	}
	return all, nil
}
