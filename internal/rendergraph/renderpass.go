package rendergraph

import (
	"errors"
	"fmt"
	"slices"
)

type annotationOp int

const (
	opLoad annotationOp = iota + 1
	opClear
	opBar
	opStore
)

// Annotation is a per-attachment modifier of a render pass: Load (`+a`),
// Clear (`~a`) or Bar (`-a`).
type Annotation struct {
	op         annotationOp
	attachment *Attachment
}

// Load declares that the pass reads the prior contents of a.
func Load(a *Attachment) Annotation { return Annotation{op: opLoad, attachment: a} }

// Clear declares that the pass clears a before using it. Passed to Stores it
// means clear-then-store.
func Clear(a *Attachment) Annotation { return Annotation{op: opClear, attachment: a} }

// Bar declares that the pass does not know a, cutting the implicit load of an
// attachment its predecessor just wrote.
func Bar(a *Attachment) Annotation { return Annotation{op: opBar, attachment: a} }

func (an Annotation) Attachment() *Attachment { return an.attachment }

func (an Annotation) String() string {
	switch an.op {
	case opLoad:
		return "+" + an.attachment.name
	case opClear:
		return "~" + an.attachment.name
	case opBar:
		return "-" + an.attachment.name
	}
	return an.attachment.name
}

func (an Annotation) output() Annotation { return an }

// Output is an operand of RenderPass.Stores: an *Attachment or Clear(a).
type Output interface {
	output() Annotation
}

func (a *Attachment) output() Annotation { return Annotation{op: opStore, attachment: a} }

// VertexKind classifies a pass by its edges.
type VertexKind int

const (
	VertexIsolated VertexKind = iota
	VertexSource
	VertexSink
	VertexInternal
)

func (k VertexKind) String() string {
	switch k {
	case VertexSource:
		return "source"
	case VertexSink:
		return "sink"
	case VertexInternal:
		return "internal"
	}
	return "isolated"
}

// RenderPass is one vertex of a Graph. It is allocated by Graph.NewPass and
// refers to its neighbours by arena index.
type RenderPass struct {
	graph    *Graph
	index    int
	name     string
	nodes    map[*Attachment]*Node
	barred   map[*Attachment]struct{}
	incoming []int
	outgoing []int
	errs     []error
}

func (p *RenderPass) Name() string   { return p.name }
func (p *RenderPass) String() string { return p.name }

// Index is the position of the pass in its graph's arena.
func (p *RenderPass) Index() int { return p.index }

// With applies Load, Clear and Bar annotations to the pass.
func (p *RenderPass) With(annotations ...Annotation) *RenderPass {
	p.graph.assertMutable()
	for _, an := range annotations {
		a := p.checkAttachment(an.attachment)
		switch an.op {
		case opLoad:
			p.addLoad(a)
		case opClear:
			p.addClear(a)
		case opBar:
			p.addBar(a)
		default:
			panic(fmt.Sprintf("rendergraph: invalid annotation on render pass %q", p.name))
		}
	}
	return p
}

// Stores marks the pass as writing each output. Clear(a) means the attachment
// is cleared first.
func (p *RenderPass) Stores(outputs ...Output) *RenderPass {
	p.graph.assertMutable()
	for _, out := range outputs {
		an := out.output()
		a := p.checkAttachment(an.attachment)
		switch an.op {
		case opStore:
			p.addStore(a, false)
		case opClear:
			p.addStore(a, true)
		case opLoad:
			p.fail(conflictingAnnotation(p, a, "store", "load (as an output)"))
		case opBar:
			p.fail(barredOutput(p, a))
		default:
			panic(fmt.Sprintf("rendergraph: invalid output on render pass %q", p.name))
		}
	}
	return p
}

func (p *RenderPass) checkAttachment(a *Attachment) *Attachment {
	if a == nil {
		panic(fmt.Sprintf("rendergraph: nil attachment on render pass %q", p.name))
	}
	return a
}

func (p *RenderPass) addLoad(a *Attachment) {
	if p.isBarred(a) {
		p.fail(conflictingAnnotation(p, a, "load", "bar"))
		return
	}
	if n := p.nodes[a]; n != nil && n.loadOp == LoadOpClear {
		p.fail(conflictingAnnotation(p, a, "load", "clear"))
		return
	}
	n := p.node(a)
	n.loadOp = LoadOpLoad
	n.explicitLoad = true
}

func (p *RenderPass) addClear(a *Attachment) {
	if p.isBarred(a) {
		p.fail(conflictingAnnotation(p, a, "clear", "bar"))
		return
	}
	if n := p.nodes[a]; n != nil {
		if n.explicitLoad {
			p.fail(conflictingAnnotation(p, a, "load", "clear"))
			return
		}
		if n.store {
			p.fail(clearOfOutput(p, a))
			return
		}
	}
	n := p.node(a)
	n.loadOp = LoadOpClear
	n.clearOnly = true
}

func (p *RenderPass) addBar(a *Attachment) {
	if n := p.nodes[a]; n != nil {
		if n.store {
			p.fail(barredOutput(p, a))
		} else {
			p.fail(conflictingAnnotation(p, a, "bar", "use"))
		}
		return
	}
	if p.barred == nil {
		p.barred = make(map[*Attachment]struct{})
	}
	p.barred[a] = struct{}{}
}

func (p *RenderPass) addStore(a *Attachment, clear bool) {
	if p.isBarred(a) {
		p.fail(barredOutput(p, a))
		return
	}
	if n := p.nodes[a]; n != nil {
		if n.clearOnly {
			p.fail(clearOfOutput(p, a))
			return
		}
		if clear && n.explicitLoad {
			p.fail(conflictingAnnotation(p, a, "load", "clear"))
			return
		}
	}
	n := p.node(a)
	n.store = true
	if clear {
		n.loadOp = LoadOpClear
	}
}

// inherit commits the implicit load of an attachment that preceding just
// cleared and stored.
func (p *RenderPass) inherit(preceding *RenderPass, a *Attachment) {
	if p.isBarred(a) {
		return
	}
	n := p.nodes[a]
	switch {
	case n == nil:
		n = p.node(a)
	case n.explicitLoad:
		p.fail(redundantLoad(preceding, p, a))
		return
	case n.loadOp == LoadOpClear:
		p.fail(clearAfterWrite(preceding, p, a))
		return
	}
	n.loadOp = LoadOpLoad
	n.implicitLoad = true
}

func (p *RenderPass) node(a *Attachment) *Node {
	n, ok := p.nodes[a]
	if !ok {
		n = &Node{attachment: a}
		p.nodes[a] = n
	}
	return n
}

func (p *RenderPass) isBarred(a *Attachment) bool {
	_, ok := p.barred[a]
	return ok
}

func (p *RenderPass) fail(err error) {
	p.errs = append(p.errs, err)
}

// Err returns the authoring errors recorded on the pass.
func (p *RenderPass) Err() error { return errors.Join(p.errs...) }

// IsKnown reports whether the pass uses a at all.
func (p *RenderPass) IsKnown(a *Attachment) bool {
	_, ok := p.nodes[a]
	return ok
}

// IsUnused is the negation of IsKnown.
func (p *RenderPass) IsUnused(a *Attachment) bool { return !p.IsKnown(a) }

// Node returns the resolved state of a in this pass.
func (p *RenderPass) Node(a *Attachment) (*Node, bool) {
	n, ok := p.nodes[a]
	return n, ok
}

// LoadOp and StoreOp report DontCare for attachments the pass does not know.
func (p *RenderPass) LoadOp(a *Attachment) LoadOp {
	if n, ok := p.nodes[a]; ok {
		return n.LoadOp()
	}
	return LoadOpDontCare
}

func (p *RenderPass) StoreOp(a *Attachment) StoreOp {
	if n, ok := p.nodes[a]; ok {
		return n.StoreOp()
	}
	return StoreOpDontCare
}

// Nodes returns the pass's nodes ordered by attachment ID.
func (p *RenderPass) Nodes() []*Node {
	out := make([]*Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(x, y *Node) int { return x.attachment.id - y.attachment.id })
	return out
}

// BarredEmpty reports whether every bar has been committed.
func (p *RenderPass) BarredEmpty() bool { return len(p.barred) == 0 }

// FinalLayout is the layout this pass leaves a in when it is the sink of a.
func (p *RenderPass) FinalLayout(a *Attachment, separateDepthStencil bool) Layout {
	n, ok := p.nodes[a]
	if !ok {
		return LayoutUndefined
	}
	if n.present {
		return LayoutPresentSrc
	}
	return a.kind.OptimalLayout(separateDepthStencil)
}

// Vertex classifies the pass by its incoming and outgoing edges.
func (p *RenderPass) Vertex() VertexKind {
	switch in, out := len(p.incoming) > 0, len(p.outgoing) > 0; {
	case in && out:
		return VertexInternal
	case out:
		return VertexSource
	case in:
		return VertexSink
	}
	return VertexIsolated
}

// Incoming and Outgoing return the neighbouring passes in edge order.
func (p *RenderPass) Incoming() []*RenderPass { return p.graph.resolve(p.incoming) }
func (p *RenderPass) Outgoing() []*RenderPass { return p.graph.resolve(p.outgoing) }
