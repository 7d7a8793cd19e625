package rendergraph

// Direction selects which edges a traversal follows.
type Direction int

const (
	// Forward follows outgoing edges, starting from the sources.
	Forward Direction = iota
	// Backward follows incoming edges, starting from the sinks.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Visitor is called once per visited pass. path holds the passes that led
// from the origin of the traversal to pass, excluding pass itself and the
// start of ForEachRenderPassFrom; it is reused after the call returns.
// Returning true stops the descent along this branch only. Walks of the same
// graph must not be nested.
type Visitor func(pass *RenderPass, path []*RenderPass) (stop bool)

// ForEachRenderPass visits every pass reachable from the sources (Forward) or
// the sinks (Backward), each exactly once.
func (g *Graph) ForEachRenderPass(dir Direction, visit Visitor) {
	origins := g.sources
	if dir == Backward {
		origins = g.sinks
	}
	g.walk(origins, dir, false, visit)
}

// ForEachRenderPassFrom visits every pass reachable from start, each exactly
// once. start itself is never passed to visit.
func (g *Graph) ForEachRenderPassFrom(start *RenderPass, dir Direction, visit Visitor) {
	g.own(start)
	g.walk([]int{start.index}, dir, true, visit)
}

// MarkPreserve flags every pass on path that knows a as having to preserve
// it.
func MarkPreserve(path []*RenderPass, a *Attachment) {
	for _, p := range path {
		if n, ok := p.nodes[a]; ok {
			n.preserve = true
		}
	}
}

type frame struct {
	pass  int
	depth int
}

func (g *Graph) walk(origins []int, dir Direction, skipOrigins bool, visit Visitor) {
	g.generation++
	gen := g.generation

	var (
		stack []frame
		path  []*RenderPass
	)
	for _, origin := range origins {
		if skipOrigins {
			g.stamps[origin] = gen
			stack = g.pushNeighbours(stack, origin, dir, 0)
		} else {
			stack = append(stack, frame{pass: origin})
		}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if g.stamps[f.pass] == gen {
				continue
			}
			g.stamps[f.pass] = gen

			// Every frame deeper than f.depth belongs to a finished branch.
			path = path[:f.depth]
			p := g.passes[f.pass]
			if visit(p, path) {
				continue
			}
			path = append(path, p)
			stack = g.pushNeighbours(stack, f.pass, dir, f.depth+1)
		}
	}
}

// pushNeighbours pushes in reverse so that neighbours are visited in edge order.
func (g *Graph) pushNeighbours(stack []frame, pass int, dir Direction, depth int) []frame {
	next := g.passes[pass].outgoing
	if dir == Backward {
		next = g.passes[pass].incoming
	}
	for i := len(next) - 1; i >= 0; i-- {
		if g.stamps[next[i]] != g.generation {
			stack = append(stack, frame{pass: next[i], depth: depth})
		}
	}
	return stack
}
