package rendergraph

import (
	"errors"
	"fmt"
	"slices"
)

type edge struct {
	from, to int
}

// Graph owns the render passes of one output target and resolves them with
// Generate.
type Graph struct {
	name   string
	passes []*RenderPass
	edges  []edge

	// stamps[i] is the generation of the last traversal that visited passes[i].
	stamps     []uint64
	generation uint64

	sources []int
	sinks   []int

	attachments []*Attachment
	finalized   bool
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{name: name}
}

func (g *Graph) Name() string { return g.name }

// NewPass allocates a render pass in the graph's arena.
func (g *Graph) NewPass(name string) *RenderPass {
	g.assertMutable()
	p := &RenderPass{
		graph: g,
		index: len(g.passes),
		name:  name,
		nodes: make(map[*Attachment]*Node),
	}
	g.passes = append(g.passes, p)
	g.stamps = append(g.stamps, 0)
	return p
}

// Chain adds the edges passes[0] -> passes[1] -> ... and records the first
// and last pass as possible source and sink. It returns the authoring errors
// recorded so far on the chained passes. Cycles are not detected.
func (g *Graph) Chain(passes ...*RenderPass) error {
	g.assertMutable()
	if len(passes) == 0 {
		return nil
	}
	for _, p := range passes {
		g.own(p)
	}
	g.sources = appendUnique(g.sources, passes[0].index)
	g.sinks = appendUnique(g.sinks, passes[len(passes)-1].index)
	for i := 1; i < len(passes); i++ {
		g.addEdge(passes[i-1], passes[i])
	}

	var errs []error
	seen := make(map[int]bool, len(passes))
	for _, p := range passes {
		if seen[p.index] {
			continue
		}
		seen[p.index] = true
		errs = append(errs, p.errs...)
	}
	return errors.Join(errs...)
}

func (g *Graph) addEdge(from, to *RenderPass) {
	if slices.Contains(from.outgoing, to.index) {
		return
	}
	from.outgoing = append(from.outgoing, to.index)
	to.incoming = append(to.incoming, from.index)
	g.edges = append(g.edges, edge{from: from.index, to: to.index})
}

func appendUnique(list []int, i int) []int {
	if slices.Contains(list, i) {
		return list
	}
	return append(list, i)
}

// Passes returns every pass allocated in the graph, chained or not, in
// allocation order.
func (g *Graph) Passes() []*RenderPass {
	out := make([]*RenderPass, len(g.passes))
	copy(out, g.passes)
	return out
}

// Sources and Sinks are the classified source and sink passes after
// Generate; before that they are the first and last passes of every chain.
func (g *Graph) Sources() []*RenderPass { return g.resolve(g.sources) }
func (g *Graph) Sinks() []*RenderPass   { return g.resolve(g.sinks) }

// Attachments returns every attachment known to a pass, ordered by ID. It
// is empty before Generate.
func (g *Graph) Attachments() []*Attachment {
	out := make([]*Attachment, len(g.attachments))
	copy(out, g.attachments)
	return out
}

func (g *Graph) resolve(indices []int) []*RenderPass {
	out := make([]*RenderPass, len(indices))
	for i, idx := range indices {
		out[i] = g.passes[idx]
	}
	return out
}

func (g *Graph) own(p *RenderPass) {
	if p == nil {
		panic(fmt.Sprintf("rendergraph: nil render pass in graph %q", g.name))
	}
	if p.graph != g {
		panic(fmt.Sprintf("rendergraph: render pass %q belongs to graph %q, not %q", p.name, p.graph.name, g.name))
	}
}

func (g *Graph) chained(p *RenderPass) bool {
	if len(p.incoming) > 0 || len(p.outgoing) > 0 {
		return true
	}
	return slices.Contains(g.sources, p.index) || slices.Contains(g.sinks, p.index)
}

func (g *Graph) assertMutable() {
	if g.finalized {
		panic(fmt.Sprintf("rendergraph: graph %q modified after Generate", g.name))
	}
}

// commitEdges turns "just written" attachments into implicit loads of the
// immediate successors and drops every bar. It returns the authoring errors
// of chained passes; passes outside every chain are never compiled.
func (g *Graph) commitEdges() error {
	for _, e := range g.edges {
		from, to := g.passes[e.from], g.passes[e.to]
		for _, n := range from.Nodes() {
			if n.justWritten() {
				to.inherit(from, n.attachment)
			}
		}
	}
	var errs []error
	for _, p := range g.passes {
		p.barred = nil
		if g.chained(p) {
			errs = append(errs, p.errs...)
		}
	}
	return errors.Join(errs...)
}
