package pagerank

import (
	"context"
	"errors"
	"sort"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphTestSuite))

type GraphTestSuite struct {
	fixture
}

func (s *GraphTestSuite) SetUpTest(c *gc.C) { s.setUp(c) }

func (s *GraphTestSuite) TestParseEdge(c *gc.C) {
	specs := []struct {
		line string
		exp  Edge
	}{
		{line: "9201001 9201002", exp: Edge{Src: "9201001", Dst: "9201002"}},
		{line: "a\tb", exp: Edge{Src: "a", Dst: "b"}},
		{line: "  a    a  ", exp: Edge{Src: "a", Dst: "a"}},
	}
	for i, spec := range specs {
		c.Logf("spec %d: %q", i, spec.line)
		got, err := ParseEdge(spec.line)
		c.Assert(err, gc.IsNil)
		c.Assert(got, gc.Equals, spec.exp)
	}

	for _, line := range []string{"", "lonely", "a b c"} {
		_, err := ParseEdge(line)
		c.Assert(errors.Is(err, ErrMalformedEdge), gc.Equals, true, gc.Commentf("line %q", line))
	}
}

func (s *GraphTestSuite) TestAdjacencyRetainsDuplicates(c *gc.C) {
	g := s.graph("a b", "b c", "a c", "a b", "c c")

	entries, err := g.Adjacency.Collect(context.TODO())
	c.Assert(err, gc.IsNil)

	got := make(map[Vertex][]Vertex)
	for _, e := range entries {
		got[e.Key] = e.Value
	}
	c.Assert(got, gc.DeepEquals, map[Vertex][]Vertex{
		"a": {"b", "c", "b"},
		"b": {"c"},
		"c": {"c"},
	})
}

func (s *GraphTestSuite) TestUniverseIncludesSinks(c *gc.C) {
	g := s.graph("a b", "b c", "a b", "d c")

	got, err := g.Universe.Collect(context.TODO())
	c.Assert(err, gc.IsNil)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	c.Assert(got, gc.DeepEquals, []Vertex{"a", "b", "c", "d"})

	edges, err := g.Edges.Count(context.TODO())
	c.Assert(err, gc.IsNil)
	c.Assert(edges, gc.Equals, 4)
}

func (s *GraphTestSuite) TestMalformedLineIsFatal(c *gc.C) {
	g := s.graph("a b", "lonely", "b a")

	_, err := g.Universe.Count(context.TODO())
	c.Assert(errors.Is(err, ErrMalformedEdge), gc.Equals, true, gc.Commentf("got %v", err))

	_, err = s.engine.RunIterations(context.TODO(), g.Adjacency, InitializeRanks(g.Universe), BaseContributions(g.Universe), 1)
	c.Assert(errors.Is(err, ErrMalformedEdge), gc.Equals, true, gc.Commentf("got %v", err))
}
