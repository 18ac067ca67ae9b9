package pagerank

import (
	"context"
	"errors"

	"Citation_Rank/graphprocessing/dataflow"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RankTableTestSuite))

type RankTableTestSuite struct {
	fixture
}

func (s *RankTableTestSuite) SetUpTest(c *gc.C) { s.setUp(c) }

func (s *RankTableTestSuite) TestInitializeRanks(c *gc.C) {
	g := s.graph("a b", "b c")
	got, err := InitializeRanks(g.Universe).Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, map[Vertex]float64{"a": 1.0, "b": 1.0, "c": 1.0})

	base, err := BaseContributions(g.Universe).Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	c.Assert(base, gc.HasLen, 3)
	for _, vr := range base {
		c.Assert(vr.Value, gc.Equals, 0.0)
	}
}

func (s *RankTableTestSuite) TestApplyDamping(c *gc.C) {
	contributions := s.table(map[Vertex]float64{"a": 0.0, "b": 1.0, "c": 0.5})
	got, err := ApplyDamping(contributions.Entries()).Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	assertRanks(c, got, map[Vertex]float64{"a": 0.15, "b": 1.0, "c": 0.575})
}

func (s *RankTableTestSuite) TestNormalize(c *gc.C) {
	table := s.table(map[Vertex]float64{"a": 0.15, "b": 0.575, "c": 0.575, "d": 2.3})
	normalized, err := table.Normalize(context.TODO())
	c.Assert(err, gc.IsNil)

	got, err := normalized.Collect(context.TODO())
	c.Assert(err, gc.IsNil)

	var sum float64
	for _, rank := range got {
		sum += rank
	}
	assertClose(c, sum, 4.0)

	factor := 4.0 / 3.6
	assertRanks(c, got, map[Vertex]float64{
		"a": 0.15 * factor,
		"b": 0.575 * factor,
		"c": 0.575 * factor,
		"d": 2.3 * factor,
	})
}

func (s *RankTableTestSuite) TestNormalizeEmptyTable(c *gc.C) {
	empty := s.table(nil)
	normalized, err := empty.Normalize(context.TODO())
	c.Assert(err, gc.IsNil)

	got, err := normalized.Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.HasLen, 0)
}

func (s *RankTableTestSuite) TestNormalizeDegenerateTable(c *gc.C) {
	zero := s.table(map[Vertex]float64{"a": 0.0, "b": 0.0})
	_, err := zero.Normalize(context.TODO())
	c.Assert(errors.Is(err, ErrDegenerateRanks), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *RankTableTestSuite) TestTopK(c *gc.C) {
	ranks := map[Vertex]float64{
		"a": 0.3, "b": 1.9, "c": 0.15, "d": 1.2, "e": 0.7, "f": 1.9, "g": 0.2,
	}
	top, err := s.table(ranks).TopK(context.TODO(), 5)
	c.Assert(err, gc.IsNil)
	c.Assert(top, gc.HasLen, 5)

	returned := make(map[Vertex]bool)
	for i, vr := range top {
		c.Assert(ranks[vr.Key], gc.Equals, vr.Value)
		if i > 0 {
			c.Assert(vr.Value <= top[i-1].Value, gc.Equals, true, gc.Commentf("ranks out of order: %v", top))
		}
		returned[vr.Key] = true
	}
	for v, rank := range ranks {
		if !returned[v] {
			c.Assert(rank <= top[len(top)-1].Value, gc.Equals, true, gc.Commentf("vertex %q with rank %v left out", v, rank))
		}
	}

	// b and f tie; either order is acceptable.
	c.Assert(top[0].Value, gc.Equals, 1.9)
	c.Assert(top[1].Value, gc.Equals, 1.9)
	c.Assert(top[2].Key, gc.Equals, Vertex("d"))

	small, err := s.table(map[Vertex]float64{"x": 1.0}).TopK(context.TODO(), 5)
	c.Assert(err, gc.IsNil)
	c.Assert(small, gc.DeepEquals, []VertexRank{{Key: "x", Value: 1.0}})
}

func (s *RankTableTestSuite) table(ranks map[Vertex]float64) RankTable {
	var entries []VertexRank
	for v, rank := range ranks {
		entries = append(entries, VertexRank{Key: v, Value: rank})
	}
	return NewRankTable(dataflow.Parallelize(s.dc, "ranks", entries))
}
