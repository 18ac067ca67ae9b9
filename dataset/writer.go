package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"Citation_Rank/pipeline"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

const (
	// BatchDir is the output subdirectory for cumulative edge files: the
	// file of a year contains the citations of every paper published up to
	// and including that year.
	BatchDir = "batch"

	// IncrementalDir is the output subdirectory for per-year edge files:
	// the file of a year only contains the citations of papers published
	// in that year.
	IncrementalDir = "incremental"
)

// Config encapsulates the settings for configuring a Writer.
type Config struct {
	// The directory under which the batch and incremental subdirectories
	// are created.
	Dir string

	// The number of files to write in parallel. Defaults to the number of
	// CPUs.
	Workers int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Dir == "" {
		err = multierror.Append(err, xerrors.Errorf("output directory has not been specified"))
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	} else if cfg.Workers < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for workers"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Writer produces the batch and incremental edge files for an Index.
type Writer struct {
	cfg  Config
	pipe *pipeline.Pipeline
}

// NewWriter returns a new Writer instance using the provided config.
func NewWriter(cfg Config) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("dataset writer: config validation failed: %w", err)
	}
	return &Writer{
		cfg:  cfg,
		pipe: pipeline.New(pipeline.FixedWorkerPool(fileWriter{}, cfg.Workers)),
	}, nil
}

// Write replaces the contents of the batch and incremental directories with
// one {year}-edges.txt file per year in [FirstYear, LastYear].
func (w *Writer) Write(ctx context.Context, ix *Index) error {
	var jobs []*edgeFile
	for _, sub := range []string{BatchDir, IncrementalDir} {
		dir := filepath.Join(w.cfg.Dir, sub)
		if err := os.RemoveAll(dir); err != nil {
			return xerrors.Errorf("dataset writer: reset %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return xerrors.Errorf("dataset writer: create %s: %w", dir, err)
		}
	}

	var cumulative []Edge
	for year := FirstYear; year <= LastYear; year++ {
		edges := ix.Edges(year)
		cumulative = append(cumulative, edges...)

		jobs = append(jobs,
			&edgeFile{path: filepath.Join(w.cfg.Dir, BatchDir, edgeFileName(year)), edges: cumulative[:len(cumulative):len(cumulative)]},
			&edgeFile{path: filepath.Join(w.cfg.Dir, IncrementalDir, edgeFileName(year)), edges: edges},
		)
	}

	sink := &fileSink{logger: w.cfg.Logger}
	if err := w.pipe.Process(ctx, &fileSource{files: jobs}, sink); err != nil {
		return xerrors.Errorf("dataset writer: %w", err)
	} else if err = ctx.Err(); err != nil {
		return xerrors.Errorf("dataset writer: %w", err)
	}

	w.cfg.Logger.WithFields(logrus.Fields{
		"dir":   w.cfg.Dir,
		"files": sink.written,
	}).Info("wrote edge files")
	return nil
}

func edgeFileName(year int) string {
	return fmt.Sprintf("%d-edges.txt", year)
}

var _ pipeline.Payload = (*edgeFile)(nil)

// edgeFile describes an edge file to be written.
type edgeFile struct {
	path  string
	edges []Edge
}

// Clone implements pipeline.Payload.
func (f *edgeFile) Clone() pipeline.Payload {
	return &edgeFile{path: f.path, edges: append([]Edge(nil), f.edges...)}
}

// MarkAsProcessed implements pipeline.Payload.
func (f *edgeFile) MarkAsProcessed() {
	f.edges = nil
}

type fileSource struct {
	files []*edgeFile
	next  int
}

func (s *fileSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil || s.next == len(s.files) {
		return false
	}
	s.next++
	return true
}

func (s *fileSource) Payload() pipeline.Payload { return s.files[s.next-1] }
func (s *fileSource) Error() error              { return nil }

// fileWriter writes the edges of an edgeFile payload to disk, one
// "src dst" line per edge.
type fileWriter struct{}

func (fileWriter) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	file := p.(*edgeFile)
	if err := writeEdges(file.path, file.edges); err != nil {
		return nil, err
	}
	return file, nil
}

func writeEdges(path string, edges []Edge) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	buf := bufio.NewWriter(f)
	for _, e := range edges {
		if _, err = fmt.Fprintf(buf, "%s %s\n", e.Src, e.Dst); err != nil {
			return err
		}
	}
	return buf.Flush()
}

type fileSink struct {
	logger  *logrus.Entry
	written int
}

func (s *fileSink) Consume(_ context.Context, p pipeline.Payload) error {
	file := p.(*edgeFile)
	s.written++
	s.logger.WithFields(logrus.Fields{
		"path":  file.path,
		"edges": len(file.edges),
	}).Debug("wrote edge file")
	return nil
}
