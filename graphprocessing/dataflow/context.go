package dataflow

import (
	"context"
	"io/ioutil"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for creating a new dataflow Context.
type Config struct {
	// The maximum number of partitions that are processed in parallel. If
	// not specified, runtime.NumCPU() workers are used.
	Workers int

	// The number of partitions produced by shuffling operations such as
	// GroupByKey, ReduceByKey, Distinct and Join. If not specified, twice
	// the number of workers is used.
	Partitions int

	// The partitioner for assigning keys to partitions. If not specified,
	// a HashPartitioner is used.
	Partitioner Partitioner

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Workers < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for workers"))
	} else if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Partitions < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for partitions"))
	} else if cfg.Partitions == 0 {
		cfg.Partitions = 2 * cfg.Workers
	}
	if cfg.Partitioner == nil {
		cfg.Partitioner = HashPartitioner{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Context is the entry point for creating collections. It holds the
// execution settings shared by every collection derived from it.
type Context struct {
	cfg Config
}

// NewContext returns a new Context instance using the provided config.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("dataflow context: config validation failed: %w", err)
	}
	return &Context{cfg: cfg}, nil
}

// Workers returns the number of partitions processed in parallel.
func (dc *Context) Workers() int { return dc.cfg.Workers }

// Partitions returns the number of partitions produced by shuffles.
func (dc *Context) Partitions() int { return dc.cfg.Partitions }

// runPartitions invokes fn for every partition index in [0, n) using at most
// Workers concurrent goroutines. The first error cancels the remaining work
// and is returned to the caller.
func (dc *Context) runPartitions(ctx context.Context, stage string, n int, fn func(ctx context.Context, part int) error) error {
	dc.cfg.Logger.WithFields(logrus.Fields{
		"stage":      stage,
		"partitions": n,
	}).Trace("running stage")

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(dc.cfg.Workers)
	for i := 0; i < n; i++ {
		part := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fn(gCtx, part)
		})
	}
	if err := g.Wait(); err != nil {
		return xerrors.Errorf("stage %s: %w", stage, err)
	}
	return nil
}
