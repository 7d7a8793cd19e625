package rendergraph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/rendergraph/internal/ctxlog"
)

// Target is the output target that owns a graph: it supplies the
// presentation attachment and device capabilities and creates the real
// render passes once the graph is resolved.
type Target interface {
	// PresentationAttachment may return nil when nothing is presented.
	PresentationAttachment() *Attachment
	SupportsSeparateDepthStencilLayouts() bool
	CreateRenderPass(pass *RenderPass) error
}

// Generate resolves the load, store, clear and preserve semantics of every
// (pass, attachment) pair and hands the passes to target. A nil target only
// validates the graph: presentation binding and render pass creation are
// skipped.
//
// Generate may be called once; calling it again panics.
func (g *Graph) Generate(ctx context.Context, target Target) error {
	if g.finalized {
		panic(fmt.Sprintf("rendergraph: Generate called twice on graph %q", g.name))
	}
	g.finalized = true
	logger := ctxlog.FromContext(ctx).With("graph", g.name)
	logger.Debug("Generating render graph.", "passes", len(g.passes), "edges", len(g.edges))

	if err := g.commitEdges(); err != nil {
		return err
	}

	g.classify()
	logger.Debug("Classified render passes.", "sources", names(g.Sources()), "sinks", names(g.Sinks()))

	g.attachments = g.inventory()
	logger.Debug("Collected attachments.", "attachments", attachmentNames(g.attachments))

	for _, a := range g.attachments {
		if err := g.resolveAttachment(logger, a); err != nil {
			return err
		}
	}

	separate := false
	if target != nil {
		separate = target.SupportsSeparateDepthStencilLayouts()
		if err := g.bindPresentation(logger, target.PresentationAttachment()); err != nil {
			return err
		}
	}

	if err := g.propagateFinalLayouts(logger, separate); err != nil {
		return err
	}

	if target == nil {
		logger.Debug("No target; render graph validated only.")
		return nil
	}
	return g.handoff(target)
}

// classify replaces the candidate sources and sinks collected by Chain with
// the passes that really have no incoming or outgoing edges.
func (g *Graph) classify() {
	var sources, sinks []int
	g.ForEachRenderPass(Forward, func(p *RenderPass, _ []*RenderPass) bool {
		if len(p.incoming) == 0 {
			sources = append(sources, p.index)
		}
		if len(p.outgoing) == 0 {
			sinks = append(sinks, p.index)
		}
		return false
	})
	slices.Sort(sources)
	slices.Sort(sinks)
	g.sources, g.sinks = sources, sinks
}

func (g *Graph) inventory() []*Attachment {
	seen := make(map[*Attachment]struct{})
	var all []*Attachment
	g.ForEachRenderPass(Forward, func(p *RenderPass, _ []*RenderPass) bool {
		for a := range p.nodes {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				all = append(all, a)
			}
		}
		return false
	})
	slices.SortFunc(all, func(x, y *Attachment) int { return x.id - y.id })
	return all
}

func (g *Graph) resolveAttachment(logger *slog.Logger, a *Attachment) error {
	logger = logger.With("attachment", a.name)

	var knows, loads, stores []*RenderPass
	g.ForEachRenderPass(Forward, func(p *RenderPass, _ []*RenderPass) bool {
		n, ok := p.nodes[a]
		if !ok {
			return false
		}
		knows = append(knows, p)
		if n.loadOp == LoadOpLoad {
			loads = append(loads, p)
		}
		if n.store {
			stores = append(stores, p)
		}
		return false
	})

	for _, p := range loads {
		if err := g.resolveLoad(logger, a, p); err != nil {
			return err
		}
	}

	for _, p := range stores {
		sink := true
		g.ForEachRenderPassFrom(p, Forward, func(next *RenderPass, _ []*RenderPass) bool {
			if next.IsKnown(a) {
				sink = false
			}
			return !sink
		})
		if sink {
			logger.Debug("Render pass is a sink.", "pass", p.name)
			p.nodes[a].sink = true
		}
	}

	for _, p := range knows {
		source := true
		g.ForEachRenderPassFrom(p, Backward, func(prev *RenderPass, _ []*RenderPass) bool {
			if prev.IsKnown(a) {
				source = false
			}
			return !source
		})
		if source {
			logger.Debug("Render pass is a source.", "pass", p.name)
			p.nodes[a].source = true
		}
	}
	return nil
}

// resolveLoad searches backwards from p for the one pass that stores a.
func (g *Graph) resolveLoad(logger *slog.Logger, a *Attachment, p *RenderPass) error {
	var (
		found []*RenderPass
		err   error
	)
	g.ForEachRenderPassFrom(p, Backward, func(prev *RenderPass, path []*RenderPass) bool {
		if err != nil {
			return true
		}
		n, ok := prev.nodes[a]
		if !ok {
			return false
		}
		if n.store {
			found = append(found, prev)
			MarkPreserve(path, a)
			return true
		}
		if n.loadOp == LoadOpClear {
			err = storeHiddenByClear(prev, p, a)
			return true
		}
		return false
	})
	if err != nil {
		return err
	}
	switch len(found) {
	case 0:
		return missingStore(p, a)
	case 1:
	default:
		return ambiguousStore(p, a, found[0], found[1])
	}

	g.preserveBetween(found[0], p, a)
	logger.Debug("Resolved load.", "pass", p.name, "stored_by", found[0].name)
	return nil
}

// preserveBetween marks every pass on any path from store to load that knows
// a. The traversal in resolveLoad only reports the first path to reach store.
func (g *Graph) preserveBetween(store, load *RenderPass, a *Attachment) {
	downstream := make(map[int]bool)
	g.ForEachRenderPassFrom(store, Forward, func(p *RenderPass, _ []*RenderPass) bool {
		downstream[p.index] = true
		return p == load
	})
	g.ForEachRenderPassFrom(load, Backward, func(p *RenderPass, _ []*RenderPass) bool {
		if p == store {
			return true
		}
		if n, ok := p.nodes[a]; ok && downstream[p.index] {
			n.preserve = true
		}
		return false
	})
}

func (g *Graph) bindPresentation(logger *slog.Logger, presentation *Attachment) error {
	if presentation == nil || !slices.Contains(g.attachments, presentation) {
		logger.Debug("Render graph does not use a presentation attachment.")
		return nil
	}

	var sinks []*RenderPass
	g.ForEachRenderPass(Forward, func(p *RenderPass, _ []*RenderPass) bool {
		if n, ok := p.nodes[presentation]; ok && n.sink {
			sinks = append(sinks, p)
		}
		return false
	})
	switch len(sinks) {
	case 0:
		return unusedPresentation(presentation)
	case 1:
	default:
		return ambiguousPresentationSink(presentation, sinks[0], sinks[1])
	}

	sinks[0].nodes[presentation].present = true
	logger.Debug("Bound presentation attachment.", "attachment", presentation.name, "pass", sinks[0].name)
	return nil
}

func (g *Graph) propagateFinalLayouts(logger *slog.Logger, separateDepthStencil bool) error {
	for _, a := range g.attachments {
		var (
			sink *RenderPass
			err  error
		)
		g.ForEachRenderPass(Backward, func(p *RenderPass, _ []*RenderPass) bool {
			if err != nil {
				return true
			}
			n, ok := p.nodes[a]
			if !ok || !n.sink {
				return false
			}
			if sink != nil {
				err = ambiguousSink(a, sink, p)
				return true
			}
			sink = p
			return true
		})
		if err != nil {
			return err
		}
		if sink == nil {
			continue
		}
		a.finalLayout = sink.FinalLayout(a, separateDepthStencil)
		logger.Debug("Assigned final layout.", "attachment", a.name, "sink", sink.name, "layout", a.finalLayout.String())
	}
	return nil
}

func (g *Graph) handoff(target Target) error {
	var err error
	g.ForEachRenderPass(Forward, func(p *RenderPass, _ []*RenderPass) bool {
		if err != nil {
			return true
		}
		if cerr := target.CreateRenderPass(p); cerr != nil {
			err = fmt.Errorf("failed to create render pass %q: %w", p.name, cerr)
			return true
		}
		return false
	})
	return err
}

func names(passes []*RenderPass) []string {
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.name
	}
	return out
}

func attachmentNames(attachments []*Attachment) []string {
	out := make([]string, len(attachments))
	for i, a := range attachments {
		out[i] = a.name
	}
	return out
}
