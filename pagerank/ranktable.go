package pagerank

import (
	"context"
	"math"

	"Citation_Rank/graphprocessing/dataflow"

	"golang.org/x/xerrors"
)

const (
	// DampingFactor is the share of the incoming contributions that a
	// vertex retains.
	DampingFactor = 0.85

	// BaseRank is the random-jump rank every vertex receives regardless
	// of its incoming contributions. No rank can drop below it.
	BaseRank = 1 - DampingFactor

	// InitialRank is the rank assigned to every vertex before the first
	// iteration.
	InitialRank = 1.0
)

// ErrDegenerateRanks is returned when a rank table violates the invariants
// guaranteed by the damping floor (e.g. a zero or non-finite rank sum).
var ErrDegenerateRanks = xerrors.New("degenerate rank table")

// RankTable maps every vertex of a graph to its rank. Rank tables are
// immutable; every operation returns a new table.
type RankTable struct {
	ranks *dataflow.Collection[VertexRank]
}

// NewRankTable wraps an existing collection of vertex ranks.
func NewRankTable(ranks *dataflow.Collection[VertexRank]) RankTable {
	return RankTable{ranks: ranks}
}

// InitializeRanks returns a table that assigns InitialRank to every vertex
// of the universe.
func InitializeRanks(universe *dataflow.Collection[Vertex]) RankTable {
	return RankTable{ranks: dataflow.Map(universe, func(v Vertex) VertexRank {
		return VertexRank{Key: v, Value: InitialRank}
	})}
}

// BaseContributions returns a cached table with a zero contribution for
// every vertex of the universe. Unioning it with the contributions of an
// iteration ensures that vertices without incoming edges still get a rank.
func BaseContributions(universe *dataflow.Collection[Vertex]) *dataflow.Collection[VertexRank] {
	return dataflow.Map(universe, func(v Vertex) VertexRank {
		return VertexRank{Key: v, Value: 0.0}
	}).Cache()
}

// ApplyDamping converts the summed contributions of each vertex into a rank
// of BaseRank + DampingFactor*contribution. The contributions must contain
// an entry for every vertex that should be present in the returned table.
func ApplyDamping(contributions *dataflow.Collection[VertexRank]) RankTable {
	return RankTable{ranks: dataflow.MapValues(contributions, damp)}
}

func damp(contribution float64) float64 {
	return BaseRank + DampingFactor*contribution
}

// Entries returns the underlying collection of vertex ranks.
func (t RankTable) Entries() *dataflow.Collection[VertexRank] { return t.ranks }

// Cache returns a table whose entries are evaluated at most once.
func (t RankTable) Cache() RankTable {
	return RankTable{ranks: t.ranks.Cache()}
}

// Normalize rescales the ranks so that their sum equals the number of
// vertices in the table. An empty table is returned unchanged.
func (t RankTable) Normalize(ctx context.Context) (RankTable, error) {
	count, err := t.ranks.Count(ctx)
	if err != nil {
		return RankTable{}, xerrors.Errorf("normalize ranks: %w", err)
	} else if count == 0 {
		return t, nil
	}

	sum, err := dataflow.Values(t.ranks).Reduce(ctx, add)
	if err != nil {
		return RankTable{}, xerrors.Errorf("normalize ranks: %w", err)
	}
	factor := float64(count) / sum
	if sum == 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return RankTable{}, xerrors.Errorf("normalize ranks: rank sum %v over %d vertices: %w", sum, count, ErrDegenerateRanks)
	}

	return RankTable{ranks: dataflow.MapValues(t.ranks, func(rank float64) float64 {
		return rank * factor
	})}, nil
}

// TopK returns the k vertices with the highest rank in descending rank
// order. The relative order of vertices with equal ranks is unspecified.
func (t RankTable) TopK(ctx context.Context, k int) ([]VertexRank, error) {
	top, err := t.ranks.Top(ctx, k, byRank)
	if err != nil {
		return nil, xerrors.Errorf("top %d ranks: %w", k, err)
	}
	return top, nil
}

// Collect returns the contents of the table as a map.
func (t RankTable) Collect(ctx context.Context) (map[Vertex]float64, error) {
	entries, err := t.ranks.Collect(ctx)
	if err != nil {
		return nil, xerrors.Errorf("collect ranks: %w", err)
	}
	out := make(map[Vertex]float64, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func add(a, b float64) float64 { return a + b }

func byRank(a, b VertexRank) bool { return a.Value < b.Value }
