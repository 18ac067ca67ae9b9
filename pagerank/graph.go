// Package pagerank implements the iterative PageRank computation on top of
// dataflow collections: building the adjacency of a graph from raw edge
// lines, seeding and damping rank tables, and running a fixed number of
// rank-propagation iterations.
package pagerank

import (
	"strings"

	"Citation_Rank/graphprocessing/dataflow"

	"golang.org/x/xerrors"
)

// ErrMalformedEdge is returned when an edge line does not consist of exactly
// two whitespace-separated vertex tokens.
var ErrMalformedEdge = xerrors.New("malformed edge line")

// Vertex identifies a graph vertex.
type Vertex string

// Edge is a directed link from Src to Dst.
type Edge struct {
	Src Vertex
	Dst Vertex
}

type (
	// AdjacencyList pairs a source vertex with the destinations of all
	// its outgoing edges, duplicates included.
	AdjacencyList = dataflow.Pair[Vertex, []Vertex]

	// VertexRank pairs a vertex with a rank or a rank contribution.
	VertexRank = dataflow.Pair[Vertex, float64]
)

// ParseEdge parses a "source destination" line. Tokens are separated by runs
// of whitespace.
func ParseEdge(line string) (Edge, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return Edge{}, xerrors.Errorf("parse %q: %w", line, ErrMalformedEdge)
	}
	return Edge{Src: Vertex(tokens[0]), Dst: Vertex(tokens[1])}, nil
}

// Graph holds the cached collections that describe the graph of a single year.
type Graph struct {
	// Edges contains the parsed edges in input order.
	Edges *dataflow.Collection[Edge]

	// Adjacency contains one entry per distinct source vertex. Vertices
	// without outgoing edges have no entry.
	Adjacency *dataflow.Collection[AdjacencyList]

	// Universe contains every vertex that appears as a source or a
	// destination of an edge.
	Universe *dataflow.Collection[Vertex]
}

// BuildGraph describes the graph for the provided edge lines. Parsing is
// deferred until the returned collections are first evaluated; a malformed
// line causes that evaluation to fail with ErrMalformedEdge.
func BuildGraph(lines *dataflow.Collection[string]) *Graph {
	edges := dataflow.TryMap(lines, ParseEdge).Cache()

	adjacency := dataflow.GroupByKey(dataflow.Map(edges, func(e Edge) dataflow.Pair[Vertex, Vertex] {
		return dataflow.Pair[Vertex, Vertex]{Key: e.Src, Value: e.Dst}
	})).Cache()

	universe := dataflow.Distinct(dataflow.FlatMap(edges, func(e Edge) []Vertex {
		return []Vertex{e.Src, e.Dst}
	})).Cache()

	return &Graph{
		Edges:     edges,
		Adjacency: adjacency,
		Universe:  universe,
	}
}
