package pagerank

import (
	"context"
	"errors"
	"fmt"

	"Citation_Rank/graphprocessing/dataflow"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(EngineTestSuite))

type EngineTestSuite struct {
	fixture
}

func (s *EngineTestSuite) SetUpTest(c *gc.C) { s.setUp(c) }

func (s *EngineTestSuite) TestMutualLinks(c *gc.C) {
	g := s.graph("A B", "B A")
	got := s.run(c, g, 1)
	assertRanks(c, got, map[Vertex]float64{"A": 1.0, "B": 1.0})

	normalized := s.normalize(c, got)
	assertRanks(c, normalized, map[Vertex]float64{"A": 1.0, "B": 1.0})
}

func (s *EngineTestSuite) TestVertexWithoutIncomingEdges(c *gc.C) {
	g := s.graph("A B", "A C")
	got := s.run(c, g, 1)
	assertRanks(c, got, map[Vertex]float64{"A": 0.15, "B": 0.575, "C": 0.575})
}

func (s *EngineTestSuite) TestSinkKeepsRankButNeverContributes(c *gc.C) {
	g := s.graph("A B", "B C")

	adjacency, err := g.Adjacency.Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	for _, entry := range adjacency {
		c.Assert(entry.Key, gc.Not(gc.Equals), Vertex("C"))
	}

	// Iteration 1: A=0.15, B=0.15+0.85*1.0, C=0.15+0.85*1.0
	assertRanks(c, s.run(c, g, 1), map[Vertex]float64{"A": 0.15, "B": 1.0, "C": 1.0})

	// Iteration 2: B only receives A's floor rank; C keeps B's full rank.
	assertRanks(c, s.run(c, g, 2), map[Vertex]float64{"A": 0.15, "B": 0.2775, "C": 1.0})

	for i := 3; i < 6; i++ {
		got := s.run(c, g, i)
		c.Assert(got, gc.HasLen, 3)
		c.Assert(got["C"] >= BaseRank, gc.Equals, true)
	}
}

func (s *EngineTestSuite) TestDuplicateEdgesInflateShares(c *gc.C) {
	g := s.graph("A B", "A B", "A C")
	// B receives two of A's three shares.
	assertRanks(c, s.run(c, g, 1), map[Vertex]float64{
		"A": 0.15,
		"B": 0.15 + 0.85*2.0/3.0,
		"C": 0.15 + 0.85*1.0/3.0,
	})
}

func (s *EngineTestSuite) TestZeroIterationsReturnInitialRanks(c *gc.C) {
	g := s.graph("A B", "B C")
	assertRanks(c, s.run(c, g, 0), map[Vertex]float64{"A": 1.0, "B": 1.0, "C": 1.0})
}

func (s *EngineTestSuite) TestInvariantsHoldAcrossIterations(c *gc.C) {
	g := s.graph(sampleEdges()...)
	universe, err := g.Universe.Count(context.TODO())
	c.Assert(err, gc.IsNil)

	for iterations := 1; iterations <= 8; iterations++ {
		got := s.run(c, g, iterations)
		c.Assert(got, gc.HasLen, universe)
		for v, rank := range got {
			c.Assert(rank >= BaseRank-floorTolerance, gc.Equals, true, gc.Commentf("vertex %q rank %v below floor", v, rank))
		}

		var sum float64
		for _, rank := range s.normalize(c, got) {
			sum += rank
		}
		assertClose(c, sum, float64(universe))
	}
}

func (s *EngineTestSuite) TestRepeatedRunsAreDeterministic(c *gc.C) {
	g := s.graph(sampleEdges()...)
	first := s.run(c, g, 10)
	second := s.run(c, g, 10)
	c.Assert(second, gc.DeepEquals, first)
}

func (s *EngineTestSuite) TestIncompleteBaseTable(c *gc.C) {
	g := s.graph("A B", "B C")
	base := BaseContributions(dataflow.Parallelize(s.dc, "partial", []Vertex{"A"}))

	_, err := s.engine.RunIterations(context.TODO(), g.Adjacency, InitializeRanks(g.Universe), base, 3)
	c.Assert(errors.Is(err, ErrDegenerateRanks), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *EngineTestSuite) TestInvalidIterationCount(c *gc.C) {
	g := s.graph("A B")
	_, err := s.engine.RunIterations(context.TODO(), g.Adjacency, InitializeRanks(g.Universe), BaseContributions(g.Universe), -1)
	c.Assert(err, gc.ErrorMatches, ".*invalid iteration count -1")
}

func (s *EngineTestSuite) TestCancelledContext(c *gc.C) {
	g := s.graph("A B", "B A")
	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()

	_, err := s.engine.RunIterations(ctx, g.Adjacency, InitializeRanks(g.Universe), BaseContributions(g.Universe), 3)
	c.Assert(errors.Is(err, context.Canceled), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *EngineTestSuite) normalize(c *gc.C, ranks map[Vertex]float64) map[Vertex]float64 {
	var entries []VertexRank
	for v, rank := range ranks {
		entries = append(entries, VertexRank{Key: v, Value: rank})
	}
	normalized, err := NewRankTable(dataflow.Parallelize(s.dc, "ranks", entries)).Normalize(context.TODO())
	c.Assert(err, gc.IsNil)

	out, err := normalized.Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	return out
}

// sampleEdges returns a small citation-like graph with hubs, sinks, cycles,
// self-loops and duplicate edges.
func sampleEdges() []string {
	var lines []string
	for i := 0; i < 30; i++ {
		src := fmt.Sprintf("v%02d", i)
		lines = append(lines,
			fmt.Sprintf("%s v%02d", src, (i*7+3)%30),
			fmt.Sprintf("%s hub", src),
		)
		if i%5 == 0 {
			lines = append(lines, fmt.Sprintf("%s sink%d", src, i/5))
		}
		if i%9 == 0 {
			lines = append(lines, fmt.Sprintf("%s %s", src, src))
		}
	}
	return append(lines, "hub v00", "hub v00", "hub v13")
}
