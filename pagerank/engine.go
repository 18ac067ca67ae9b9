package pagerank

import (
	"context"
	"io/ioutil"

	"Citation_Rank/graphprocessing/aggregator"
	"Citation_Rank/graphprocessing/dataflow"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for configuring an Engine.
type Config struct {
	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return nil
}

// Engine runs the rank-propagation iterations for a graph.
type Engine struct {
	cfg Config
}

// NewEngine returns a new Engine instance using the provided config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("pagerank engine: config validation failed: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// RunIterations runs exactly count iterations starting from initialRanks and
// returns the resulting rank table. Each iteration distributes the rank of
// every vertex with outgoing edges equally among its destinations, sums the
// contributions received by each vertex together with baseContrib and
// applies the damping formula.
//
// baseContrib must contain a zero contribution for every vertex of the graph
// (see BaseContributions); the adjacency and baseContrib collections are
// read once per iteration and should be cached by the caller.
func (e *Engine) RunIterations(
	ctx context.Context,
	adjacency *dataflow.Collection[AdjacencyList],
	initialRanks RankTable,
	baseContrib *dataflow.Collection[VertexRank],
	count int,
) (RankTable, error) {
	if count < 0 {
		return RankTable{}, xerrors.Errorf("pagerank engine: invalid iteration count %d", count)
	}

	numVertices, err := baseContrib.Count(ctx)
	if err != nil {
		return RankTable{}, xerrors.Errorf("pagerank engine: %w", err)
	}

	ranks := initialRanks
	step := func(_ context.Context, _ int) error {
		ranks = iterate(adjacency, ranks, baseContrib).Cache()
		return nil
	}

	exec := NewExecutor(step, ExecutorCallbacks{
		PostStep: func(ctx context.Context, iteration int) error {
			return e.checkRanks(ctx, iteration, ranks, numVertices)
		},
	})
	if err = exec.RunSteps(ctx, count); err != nil {
		return RankTable{}, xerrors.Errorf("pagerank engine: iteration %d: %w", exec.Superstep(), err)
	}
	return ranks, nil
}

// iterate describes a single rank-propagation round.
func iterate(adjacency *dataflow.Collection[AdjacencyList], ranks RankTable, baseContrib *dataflow.Collection[VertexRank]) RankTable {
	contributions := dataflow.FlatMap(
		dataflow.Join(adjacency, ranks.Entries()),
		distribute,
	)
	sums := dataflow.ReduceByKey(contributions.Union(baseContrib), add)
	return ApplyDamping(sums)
}

// distribute splits the rank of a vertex equally among its destinations.
// Duplicate destinations receive one share per occurrence.
func distribute(entry dataflow.Pair[Vertex, dataflow.Joined[[]Vertex, float64]]) []VertexRank {
	dsts, rank := entry.Value.Left, entry.Value.Right
	if len(dsts) == 0 {
		return nil
	}
	share := rank / float64(len(dsts))
	out := make([]VertexRank, len(dsts))
	for i, dst := range dsts {
		out[i] = VertexRank{Key: dst, Value: share}
	}
	return out
}

// checkRanks evaluates the rank table produced by an iteration and verifies
// that it covers the whole graph and respects the damping floor.
func (e *Engine) checkRanks(ctx context.Context, iteration int, ranks RankTable, numVertices int) error {
	var (
		mass    = new(aggregator.Float64Accumulator)
		minRank = aggregator.NewFloat64Min()
		seen    = new(aggregator.IntAccumulator)
	)
	err := ranks.Entries().ForEach(ctx, func(vr VertexRank) {
		mass.Aggregate(vr.Value)
		minRank.Aggregate(vr.Value)
		seen.Aggregate(1)
	})
	if err != nil {
		return err
	}

	e.cfg.Logger.WithFields(logrus.Fields{
		"iteration": iteration,
		"vertices":  seen.Get(),
		"rank_mass": mass.Get(),
		"min_rank":  minRank.Get(),
	}).Debug("completed pagerank iteration")

	if n := seen.Get().(int); n != numVertices {
		return xerrors.Errorf("rank table holds %d vertices, expected %d: %w", n, numVertices, ErrDegenerateRanks)
	}
	// Allow for rounding in the damping formula.
	if m := minRank.Get().(float64); numVertices > 0 && m < BaseRank-floorTolerance {
		return xerrors.Errorf("rank %v below damping floor: %w", m, ErrDegenerateRanks)
	}
	return nil
}

const floorTolerance = 1e-12
