// Package rendergraph resolves the attachment semantics of a frame's render
// passes before any frame is rendered.
//
// A Graph is a DAG of RenderPass vertices. Each pass knows a set of
// attachments and, per attachment, holds a Node describing how the pass
// begins (load, clear or don't care) and ends (store or don't care) its use
// of that attachment. Authoring code only states intent:
//
//	g := rendergraph.New("deferred")
//	lighting := g.NewPass("lighting")
//	composite := g.NewPass("composite")
//
//	g.Chain(
//	    lighting.Stores(rendergraph.Clear(specular)),
//	    composite.With(rendergraph.Bar(depth)).Stores(output),
//	)
//
// which is the Go spelling of `lighting->stores(~specular) >> composite[-depth]->stores(output)`.
//
// # Resolution
//
// Generate runs once per graph. It commits implicit loads along edges,
// classifies source and sink passes, resolves every load to exactly one
// preceding store (marking passes in between as preserving the attachment),
// finds the pass where each attachment's lifetime begins and ends, binds the
// presentation attachment, assigns final layouts and finally hands every pass
// to the Target that turns it into a real render pass.
//
// # Traversal
//
// ForEachRenderPass and ForEachRenderPassFrom walk the graph with an explicit
// stack. Every graph has its own generation counter used as a visited stamp,
// so independent graphs may be resolved on different goroutines. A single
// graph is not safe for concurrent use.
package rendergraph
