package rendergraph

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is four passes and three attachments that every case can draw
// from. Passes that a case does not chain stay out of the graph.
type fixture struct {
	g           *Graph
	set         *Attachments
	lighting    *RenderPass
	pass1       *RenderPass
	pass2       *RenderPass
	renderPass  *RenderPass
	specular    *Attachment
	output      *Attachment
	presentable *Attachment
}

func newFixture() *fixture {
	set := NewAttachments()
	g := New("test")
	return &fixture{
		g:           g,
		set:         set,
		lighting:    g.NewPass("lighting"),
		pass1:       g.NewPass("pass1"),
		pass2:       g.NewPass("pass2"),
		renderPass:  g.NewPass("render_pass"),
		specular:    set.Declare("specular", ViewColor),
		output:      set.Declare("output", ViewColor),
		presentable: set.DeclarePresentation("swapchain", ViewColor),
	}
}

// ops is the (load, store) pair a pass resolved to for one attachment.
type ops struct {
	Load  LoadOp
	Store StoreOp
}

func opsOf(p *RenderPass, a *Attachment) ops {
	return ops{Load: p.LoadOp(a), Store: p.StoreOp(a)}
}

type fakeTarget struct {
	presentation *Attachment
	separate     bool
	created      []string
	failOn       string
}

func (f *fakeTarget) PresentationAttachment() *Attachment       { return f.presentation }
func (f *fakeTarget) SupportsSeparateDepthStencilLayouts() bool { return f.separate }

func (f *fakeTarget) CreateRenderPass(p *RenderPass) error {
	if p.Name() == f.failOn {
		return errors.New("device lost")
	}
	f.created = append(f.created, p.Name())
	return nil
}

func TestGenerate_Annotations(t *testing.T) {
	testCases := []struct {
		name    string
		chain   func(f *fixture) []*RenderPass
		wantErr error
		// want is checked on render_pass for the specular attachment; a nil
		// want means render_pass must not know specular at all.
		want *ops
	}{
		{
			name:  "attachment not used",
			chain: func(f *fixture) []*RenderPass { return []*RenderPass{f.renderPass.Stores(f.output)} },
		},
		{
			name: "bar on a lone pass leaves the attachment unused",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Bar(f.specular)).Stores(f.output)}
			},
		},
		{
			name: "bar after a pass that did not write the attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(f.output), f.renderPass.With(Bar(f.specular)).Stores(f.output)}
			},
		},
		{
			name: "explicit load through an unrelated pass",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{
					f.pass1.Stores(f.specular),
					f.pass2.Stores(f.output),
					f.renderPass.With(Load(f.specular)).Stores(f.output),
				}
			},
			want: &ops{LoadOpLoad, StoreOpDontCare},
		},
		{
			name: "clear only",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Clear(f.specular)).Stores(f.output)}
			},
			want: &ops{LoadOpClear, StoreOpDontCare},
		},
		{
			name:  "store only",
			chain: func(f *fixture) []*RenderPass { return []*RenderPass{f.renderPass.Stores(f.specular)} },
			want:  &ops{LoadOpDontCare, StoreOpStore},
		},
		{
			name: "bar and store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Bar(f.specular)).Stores(f.specular)}
			},
			wantErr: ErrIllegalBarAfterWrite,
		},
		{
			name: "explicit load and store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{
					f.pass1.Stores(f.specular),
					f.pass2.Stores(f.output),
					f.renderPass.With(Load(f.specular)).Stores(f.specular),
				}
			},
			want: &ops{LoadOpLoad, StoreOpStore},
		},
		{
			name: "clear modifier with store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Clear(f.specular)).Stores(f.specular)}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
		{
			name: "clear then store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.Stores(Clear(f.specular))}
			},
			want: &ops{LoadOpClear, StoreOpStore},
		},
		{
			name: "bar with clear then store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Bar(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrIllegalBarAfterWrite,
		},
		{
			name: "load with clear then store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Load(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrConflictingAnnotation,
		},
		{
			name: "clear modifier with clear then store",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.renderPass.With(Clear(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
		{
			name: "just written attachment is loaded implicitly",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.Stores(f.output)}
			},
			want: &ops{LoadOpLoad, StoreOpDontCare},
		},
		{
			name: "bar cuts the implicit load",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Bar(f.specular)).Stores(f.output)}
			},
		},
		{
			name: "explicit load of a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Load(f.specular)).Stores(f.output)}
			},
			wantErr: ErrRedundantLoad,
		},
		{
			name: "clear of a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Clear(f.specular)).Stores(f.output)}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
		{
			name: "store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.Stores(f.specular)}
			},
			want: &ops{LoadOpLoad, StoreOpStore},
		},
		{
			name: "bar and store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Bar(f.specular)).Stores(f.specular)}
			},
			wantErr: ErrIllegalBarAfterWrite,
		},
		{
			name: "load and store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Load(f.specular)).Stores(f.specular)}
			},
			wantErr: ErrRedundantLoad,
		},
		{
			name: "clear modifier and store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Clear(f.specular)).Stores(f.specular)}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
		{
			name: "clear then store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.Stores(Clear(f.specular))}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
		{
			name: "bar with clear then store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Bar(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrIllegalBarAfterWrite,
		},
		{
			name: "load with clear then store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Load(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrConflictingAnnotation,
		},
		{
			name: "clear modifier with clear then store after a just written attachment",
			chain: func(f *fixture) []*RenderPass {
				return []*RenderPass{f.lighting.Stores(Clear(f.specular)), f.renderPass.With(Clear(f.specular)).Stores(Clear(f.specular))}
			},
			wantErr: ErrIllegalClearAfterWrite,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			f := newFixture()
			_ = f.g.Chain(tc.chain(f)...)

			// --- Act ---
			err := f.g.Generate(context.Background(), nil)

			// --- Assert ---
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, f.g.Sinks(), 1)
			assert.Equal(t, f.renderPass, f.g.Sinks()[0], "the pass under test is always the last one")
			assert.True(t, f.renderPass.BarredEmpty())

			if tc.want == nil {
				assert.True(t, f.renderPass.IsUnused(f.specular))
				return
			}
			require.True(t, f.renderPass.IsKnown(f.specular))
			if diff := cmp.Diff(*tc.want, opsOf(f.renderPass, f.specular)); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerate_AnnotationOrderIndependent(t *testing.T) {
	f := newFixture()
	err := f.g.Chain(f.renderPass.Stores(f.specular).With(Bar(f.specular)))
	assert.ErrorIs(t, err, ErrIllegalBarAfterWrite)

	f = newFixture()
	err = f.g.Chain(f.renderPass.Stores(f.specular).With(Clear(f.specular)))
	assert.ErrorIs(t, err, ErrIllegalClearAfterWrite)

	f = newFixture()
	err = f.g.Chain(f.renderPass.Stores(Clear(f.specular)).With(Load(f.specular)))
	assert.ErrorIs(t, err, ErrConflictingAnnotation)
}

func TestGenerate_AnnotationErrorsReportedByChainAndGenerate(t *testing.T) {
	f := newFixture()
	chainErr := f.g.Chain(f.renderPass.With(Bar(f.specular)).Stores(f.specular))
	require.Error(t, chainErr)

	err := f.g.Generate(context.Background(), nil)
	require.Error(t, err)

	var rgErr *Error
	require.ErrorAs(t, err, &rgErr)
	assert.Equal(t, "render_pass", rgErr.Pass)
	assert.Equal(t, "specular", rgErr.Attachment)
	assert.Contains(t, rgErr.Error(), "is barred")
}

func TestGenerate_PreserveThroughIntermediatePass(t *testing.T) {
	// --- Arrange ---
	f := newFixture()
	require.NoError(t, f.g.Chain(
		f.lighting.Stores(Clear(f.specular)),
		f.renderPass.Stores(f.output),
		f.pass1.With(Load(f.specular)).Stores(f.output),
	))

	// --- Act ---
	err := f.g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	n, ok := f.renderPass.Node(f.specular)
	require.True(t, ok)
	assert.True(t, n.IsImplicitLoad())
	assert.True(t, n.Preserve())
	assert.Equal(t, ops{LoadOpLoad, StoreOpStore}, opsOf(f.renderPass, f.specular))
	assert.Equal(t, ops{LoadOpLoad, StoreOpDontCare}, opsOf(f.pass1, f.specular))
}

func TestGenerate_PreserveOnSiblingPaths(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	out := set.Declare("out", ViewColor)
	g := New("diamond")
	top := g.NewPass("top")
	left := g.NewPass("left")
	right := g.NewPass("right")
	bottom := g.NewPass("bottom")

	require.NoError(t, g.Chain(top.Stores(Clear(x)), left.Stores(out), bottom.With(Load(x)).Stores(out)))
	require.NoError(t, g.Chain(top, right, bottom))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	for _, p := range []*RenderPass{left, right} {
		n, ok := p.Node(x)
		require.True(t, ok, "%s inherits x from top", p.Name())
		assert.True(t, n.Preserve(), "%s sits between the store and the load of x", p.Name())
	}
	assert.Equal(t, LoadOpLoad, bottom.LoadOp(x))
}

// Scenario A.
func TestGenerate_SinglePassIsSourceAndSink(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	g := New("single")
	p := g.NewPass("p")
	require.NoError(t, g.Chain(p.Stores(x)))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	n, ok := p.Node(x)
	require.True(t, ok)
	assert.True(t, n.IsSource())
	assert.True(t, n.IsSink())
	assert.Equal(t, LoadOpDontCare, n.LoadOp())
	assert.Equal(t, StoreOpStore, n.StoreOp())
	assert.Equal(t, VertexIsolated, p.Vertex())
	assert.Equal(t, LayoutColorAttachmentOptimal, x.FinalLayout())
}

// Scenario B.
func TestGenerate_LoadSkipsPassThatDoesNotKnowAttachment(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	y := set.Declare("y", ViewColor)
	g := New("b")
	p1, p2, p3 := g.NewPass("P1"), g.NewPass("P2"), g.NewPass("P3")
	require.NoError(t, g.Chain(p1.Stores(x), p2.Stores(y), p3.With(Load(x)).Stores(y)))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, LoadOpLoad, p3.LoadOp(x))
	assert.True(t, p2.IsUnused(x))
	for _, p := range g.Passes() {
		for _, n := range p.Nodes() {
			assert.False(t, n.Preserve(), "%s/%s", p.Name(), n.Attachment().Name())
		}
	}
}

// Scenario C.
func TestGenerate_ClearOfJustWrittenAttachment(t *testing.T) {
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	y := set.Declare("y", ViewColor)
	g := New("c")
	p1, p2 := g.NewPass("P1"), g.NewPass("P2")
	_ = g.Chain(p1.Stores(Clear(x)), p2.With(Clear(x)).Stores(y))

	err := g.Generate(context.Background(), nil)
	require.ErrorIs(t, err, ErrIllegalClearAfterWrite)
	assert.Contains(t, err.Error(), `just written by "P1"`)
}

func TestGenerate_IgnoresAuthoringErrorsOfUnchainedPasses(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	g := New("unchained")
	p, q := g.NewPass("P"), g.NewPass("Q")
	q.With(Load(x), Clear(x))
	require.NoError(t, g.Chain(p.Stores(x)))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []*RenderPass{p}, g.Sources())
	assert.NotContains(t, g.Sinks(), q)
}

// Scenario D.
func TestGenerate_BarRemovesKnowledge(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	y := set.Declare("y", ViewColor)
	g := New("d")
	p1, p2, p3 := g.NewPass("P1"), g.NewPass("P2"), g.NewPass("P3")
	require.NoError(t, g.Chain(p1.Stores(x), p2.Stores(y), p3.With(Bar(x)).Stores(y)))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, p3.IsUnused(x))
	n, ok := p1.Node(x)
	require.True(t, ok)
	assert.True(t, n.IsSink())
}

// Scenario E.
func TestGenerate_PresentationBinding(t *testing.T) {
	t.Run("single sink is presented", func(t *testing.T) {
		// --- Arrange ---
		f := newFixture()
		require.NoError(t, f.g.Chain(f.lighting.Stores(f.specular), f.renderPass.With(Load(f.specular)).Stores(f.presentable)))
		target := &fakeTarget{presentation: f.presentable}

		// --- Act ---
		err := f.g.Generate(context.Background(), target)

		// --- Assert ---
		require.NoError(t, err)
		n, ok := f.renderPass.Node(f.presentable)
		require.True(t, ok)
		assert.True(t, n.IsPresent())
		assert.Equal(t, LayoutPresentSrc, f.renderPass.FinalLayout(f.presentable, false))
		assert.Equal(t, LayoutPresentSrc, f.presentable.FinalLayout())
		assert.Equal(t, []string{"lighting", "render_pass"}, target.created)
	})

	t.Run("two sinks are ambiguous", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.g.Chain(f.lighting.Stores(f.specular), f.renderPass.Stores(f.presentable)))
		require.NoError(t, f.g.Chain(f.lighting, f.pass1.Stores(f.presentable)))

		err := f.g.Generate(context.Background(), &fakeTarget{presentation: f.presentable})
		assert.ErrorIs(t, err, ErrAmbiguousPresentationSink)
	})

	t.Run("used but never a sink", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.g.Chain(f.lighting.Stores(Clear(f.presentable)), f.renderPass.Stores(f.output)))

		err := f.g.Generate(context.Background(), &fakeTarget{presentation: f.presentable})
		assert.ErrorIs(t, err, ErrUnusedPresentationAttachment)
	})

	t.Run("not referenced by the graph", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.g.Chain(f.renderPass.Stores(f.output)))
		target := &fakeTarget{presentation: f.presentable}

		require.NoError(t, f.g.Generate(context.Background(), target))
		assert.Equal(t, []string{"render_pass"}, target.created)
	})
}

// P2: a unique backward path resolves and preserves.
func TestGenerate_LoadResolvesThroughKnowingPasses(t *testing.T) {
	for length := 1; length <= 6; length++ {
		set := NewAttachments()
		x := set.Declare("x", ViewColor)
		out := set.Declare("out", ViewColor)
		g := New("chain")

		passes := []*RenderPass{g.NewPass("store").Stores(Clear(x))}
		for i := 0; i < length; i++ {
			// Only the first intermediate inherits x; the rest load it explicitly.
			p := g.NewPass("mid").Stores(out)
			if i > 0 {
				p.With(Load(x))
			}
			passes = append(passes, p)
		}
		loader := g.NewPass("load").With(Load(x)).Stores(out)
		passes = append(passes, loader)
		require.NoError(t, g.Chain(passes...))

		require.NoError(t, g.Generate(context.Background(), nil), "length %d", length)
		assert.Equal(t, LoadOpLoad, loader.LoadOp(x))
		for _, p := range passes[1 : len(passes)-1] {
			n, ok := p.Node(x)
			require.True(t, ok)
			assert.True(t, n.Preserve(), "length %d", length)
			assert.Equal(t, StoreOpStore, n.StoreOp())
		}
	}
}

// P3.
func TestGenerate_AmbiguousStore(t *testing.T) {
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	g := New("p3")
	a, b, l := g.NewPass("a"), g.NewPass("b"), g.NewPass("l")
	require.NoError(t, g.Chain(a.Stores(x), l.With(Load(x))))
	require.NoError(t, g.Chain(b.Stores(x), l))

	err := g.Generate(context.Background(), nil)
	require.ErrorIs(t, err, ErrAmbiguousStore)
	assert.Contains(t, err.Error(), `both "a" and "b" stores are visible`)
}

func TestGenerate_MissingStore(t *testing.T) {
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	y := set.Declare("y", ViewColor)
	g := New("missing")
	a, l := g.NewPass("a"), g.NewPass("l")
	require.NoError(t, g.Chain(a.Stores(y), l.With(Load(x)).Stores(y)))

	err := g.Generate(context.Background(), nil)
	require.ErrorIs(t, err, ErrMissingStore)
	assert.Contains(t, err.Error(), "has no visible stores")
}

func TestGenerate_StoreHiddenByClear(t *testing.T) {
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	y := set.Declare("y", ViewColor)
	g := New("hidden")
	a, c, l := g.NewPass("a"), g.NewPass("c"), g.NewPass("l")
	require.NoError(t, g.Chain(a.Stores(x), c.With(Clear(x)).Stores(y), l.With(Load(x)).Stores(y)))

	err := g.Generate(context.Background(), nil)
	require.ErrorIs(t, err, ErrStoreHiddenByClear)
	assert.Contains(t, err.Error(), `Did you mean "c" to store "x"?`)
}

// P4.
func TestGenerate_AmbiguousSink(t *testing.T) {
	set := NewAttachments()
	x := set.Declare("x", ViewColor)
	g := New("p4")
	a, b := g.NewPass("a"), g.NewPass("b")
	require.NoError(t, g.Chain(a.Stores(x)))
	require.NoError(t, g.Chain(b.Stores(x)))

	err := g.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAmbiguousSink)
}

func TestGenerate_BigGraph(t *testing.T) {
	// --- Arrange ---
	set := NewAttachments()
	a := make([]*Attachment, 13)
	for i := 1; i <= 12; i++ {
		a[i] = set.Declare("a"+strconv.Itoa(i), ViewColor)
	}
	g := New("big")
	p := make([]*RenderPass, 13)
	for i := 1; i <= 12; i++ {
		p[i] = g.NewPass("pass" + strconv.Itoa(i))
	}

	require.NoError(t, g.Chain(p[1].Stores(a[1]), p[2].Stores(a[2]), p[9]))
	require.NoError(t, g.Chain(p[3].Stores(a[3]), p[12].With(Load(a[1]), Load(a[9]), Load(a[10])).Stores(a[12])))
	require.NoError(t, g.Chain(p[3], p[4].With(Load(a[3])).Stores(a[4]), p[9].Stores(a[9]), p[12]))
	require.NoError(t, g.Chain(p[3], p[10].With(Load(a[3]), Load(a[5])).Stores(a[10]), p[12]))
	require.NoError(t, g.Chain(p[5].Stores(a[5]), p[6].Stores(a[6]), p[7].Stores(a[7]), p[10]))
	require.NoError(t, g.Chain(p[8].Stores(a[8]), p[11].With(Load(a[6])).Stores(a[11])))
	require.NoError(t, g.Chain(p[6], p[11]))

	// --- Act ---
	err := g.Generate(context.Background(), nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"pass1", "pass3", "pass5", "pass8"}, names(g.Sources()))
	assert.Equal(t, []string{"pass11", "pass12"}, names(g.Sinks()))

	for _, load := range []struct {
		pass, attachment int
	}{{12, 1}, {12, 9}, {12, 10}, {4, 3}, {10, 3}, {10, 5}, {11, 6}} {
		assert.Equal(t, LoadOpLoad, p[load.pass].LoadOp(a[load.attachment]), "pass%d loads a%d", load.pass, load.attachment)
	}

	sinkOf := map[int]int{2: 2, 4: 4, 7: 7, 8: 8, 11: 11, 12: 12}
	for att, pass := range sinkOf {
		n, ok := p[pass].Node(a[att])
		require.True(t, ok)
		assert.True(t, n.IsSink(), "pass%d is the sink of a%d", pass, att)
	}
	for _, att := range []int{1, 3, 5, 6, 9, 10} {
		for i := 1; i <= 12; i++ {
			if n, ok := p[i].Node(a[att]); ok {
				assert.False(t, n.IsSink(), "a%d is consumed later, pass%d can't be its sink", att, i)
			}
		}
	}
	assert.Equal(t, VertexInternal, p[9].Vertex())
	assert.Equal(t, VertexSink, p[12].Vertex())
}

func TestGenerate_FinalLayouts(t *testing.T) {
	set := NewAttachments()
	depth := set.Declare("depth", ViewDepth)
	stencil := set.Declare("stencil", ViewStencil)
	color := set.Declare("color", ViewColor)

	for _, tc := range []struct {
		separate    bool
		wantDepth   Layout
		wantStencil Layout
	}{
		{false, LayoutDepthStencilAttachmentOptimal, LayoutDepthStencilAttachmentOptimal},
		{true, LayoutDepthAttachmentOptimal, LayoutStencilAttachmentOptimal},
	} {
		g := New("layouts")
		p := g.NewPass("p")
		require.NoError(t, g.Chain(p.Stores(depth, stencil, color)))
		require.NoError(t, g.Generate(context.Background(), &fakeTarget{separate: tc.separate}))

		assert.Equal(t, tc.wantDepth, depth.FinalLayout())
		assert.Equal(t, tc.wantStencil, stencil.FinalLayout())
		assert.Equal(t, LayoutColorAttachmentOptimal, color.FinalLayout())
	}
}

func TestGenerate_HandoffFailure(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.g.Chain(f.lighting.Stores(f.output), f.renderPass.Stores(f.output)))

	err := f.g.Generate(context.Background(), &fakeTarget{failOn: "render_pass"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to create render pass "render_pass": device lost`)
}

func TestGenerate_ProgrammerErrorsPanic(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.g.Chain(f.renderPass.Stores(f.output)))
	require.NoError(t, f.g.Generate(context.Background(), nil))

	assert.Panics(t, func() { _ = f.g.Generate(context.Background(), nil) }, "Generate is single-shot")
	assert.Panics(t, func() { f.g.NewPass("late") })
	assert.Panics(t, func() { f.renderPass.Stores(f.specular) })
	assert.Panics(t, func() { _ = f.g.Chain(f.lighting) })

	other := New("other")
	assert.Panics(t, func() { _ = other.Chain(other.NewPass("x"), f.lighting) })
}
