package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// writeDOT emits one Graphviz digraph per result. Every pass is a vertex;
// outgoing edges are drawn black and incoming edges blue, so that both
// directions of the adjacency lists are visible.
func writeDOT(w io.Writer, results []Result) error {
	for _, r := range results {
		g := newDotGraph(r)
		b, err := dot.Marshal(g, r.Graph, "", "  ")
		if err != nil {
			return fmt.Errorf("encode graph %q as dot: %w", r.Graph, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

type dotNode struct {
	id   int64
	name string
}

func (n dotNode) ID() int64     { return n.id }
func (n dotNode) DOTID() string { return n.name }

type dotEdge struct {
	simple.Edge
	attrs attributes
}

func (e dotEdge) Attributes() []encoding.Attribute { return e.attrs }

// dotGraph carries the graph level label of a failed result.
type dotGraph struct {
	*simple.DirectedGraph
	attrs attributes
}

func (g dotGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return g.attrs, attributes(nil), attributes(nil)
}

func newDotGraph(r Result) dotGraph {
	g := dotGraph{DirectedGraph: simple.NewDirectedGraph()}
	if r.Failed() {
		g.attrs = attributes{{Key: "label", Value: "failed: " + r.Error}}
	}

	nodes := make(map[string]dotNode, len(r.Passes))
	for i, p := range r.Passes {
		n := dotNode{id: int64(i), name: p.Name}
		nodes[p.Name] = n
		g.AddNode(n)
	}
	for _, p := range r.Passes {
		from := nodes[p.Name]
		for _, next := range p.Outgoing {
			g.SetEdge(dotEdge{Edge: simple.Edge{F: from, T: nodes[next]}})
		}
		for _, prev := range p.Incoming {
			g.SetEdge(dotEdge{
				Edge:  simple.Edge{F: from, T: nodes[prev]},
				attrs: attributes{{Key: "color", Value: "blue"}},
			})
		}
	}
	return g
}
