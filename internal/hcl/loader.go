package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/specialistvlad/rendergraph/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".hcl"} }

// Load parses every .hcl file among paths (directories are searched
// recursively) and returns the graphs they declare in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		graphs, diags := l.translateFile(ctx, file, hclFile.Body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := model.Merge(&config.Model{Graphs: graphs}); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "graphs", len(model.Graphs))
	return model, nil
}

func (l *Loader) translateFile(ctx context.Context, file string, body hcl.Body) ([]*config.Graph, hcl.Diagnostics) {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	diags = append(diags, FindDuplicateLabels(content.Blocks, "graph")...)

	var graphs []*config.Graph
	for _, block := range content.Blocks {
		g, gDiags := l.translateGraph(ctx, file, block)
		diags = append(diags, gDiags...)
		if g != nil {
			graphs = append(graphs, g)
		}
	}
	return graphs, diags
}

// translateGraph converts one `graph` block. Attachments and passes are
// collected first so that references to them can be evaluated in any order.
func (l *Loader) translateGraph(ctx context.Context, file string, block *hcl.Block) (*config.Graph, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx).With("graph", block.Labels[0])

	content, diags := block.Body.Content(graphSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	diags = append(diags, FindDuplicateLabels(content.Blocks, "attachment")...)
	diags = append(diags, FindDuplicateLabels(content.Blocks, "pass")...)
	target, tDiags := FindUniqueBlock(content.Blocks, "target")
	diags = append(diags, tDiags...)

	g := &config.Graph{Name: block.Labels[0], Source: file}
	var attachments, passes []string
	for _, b := range content.Blocks {
		switch b.Type {
		case "attachment":
			var ab attachmentBlock
			diags = append(diags, gohcl.DecodeBody(b.Body, nil, &ab)...)
			g.Attachments = append(g.Attachments, &config.Attachment{Name: b.Labels[0], Kind: ab.Kind})
			attachments = append(attachments, b.Labels[0])
		case "pass":
			passes = append(passes, b.Labels[0])
		}
	}
	evalCtx := newEvalContext(attachments, passes)

	if target != nil {
		t, tDiags := l.translateTarget(ctx, target, evalCtx)
		diags = append(diags, tDiags...)
		g.Target = t
	}

	for _, b := range content.Blocks {
		if b.Type != "pass" {
			continue
		}
		p, pDiags := l.translatePass(ctx, b, evalCtx)
		diags = append(diags, pDiags...)
		g.Passes = append(g.Passes, p)
	}

	if attr, ok := content.Attributes["chains"]; ok {
		var chains [][]string
		_, cDiags := decodeExpr(ctx, attr.Expr, evalCtx, cty.List(cty.List(cty.String)), &chains)
		diags = append(diags, cDiags...)
		for _, c := range chains {
			g.Chains = append(g.Chains, &config.Chain{Passes: c})
		}
	}
	for _, b := range content.Blocks {
		if b.Type != "chain" {
			continue
		}
		var cb chainBlock
		if d := gohcl.DecodeBody(b.Body, nil, &cb); d.HasErrors() {
			diags = append(diags, d...)
			continue
		}
		var chain []string
		_, cDiags := decodeExpr(ctx, cb.Passes, evalCtx, cty.List(cty.String), &chain)
		diags = append(diags, cDiags...)
		g.Chains = append(g.Chains, &config.Chain{Passes: chain})
	}

	logger.Debug("Translated graph block.",
		"attachments", len(g.Attachments),
		"passes", len(g.Passes),
		"chains", len(g.Chains),
		"has_target", g.Target != nil,
	)
	return g, diags
}

func (l *Loader) translateTarget(ctx context.Context, block *hcl.Block, evalCtx *hcl.EvalContext) (*config.Target, hcl.Diagnostics) {
	var tb targetBlock
	diags := gohcl.DecodeBody(block.Body, nil, &tb)
	if diags.HasErrors() {
		return nil, diags
	}

	t := &config.Target{SeparateDepthStencilLayouts: tb.SeparateDepthStencilLayouts}
	_, pDiags := decodeExpr(ctx, tb.Presentation, evalCtx, cty.String, &t.Presentation)
	return t, append(diags, pDiags...)
}

func (l *Loader) translatePass(ctx context.Context, block *hcl.Block, evalCtx *hcl.EvalContext) (*config.Pass, hcl.Diagnostics) {
	p := &config.Pass{Name: block.Labels[0]}

	var pb passBlock
	diags := gohcl.DecodeBody(block.Body, nil, &pb)
	if diags.HasErrors() {
		return p, diags
	}

	with, wDiags := decodeTokens(ctx, pb.With, evalCtx)
	stores, sDiags := decodeTokens(ctx, pb.Stores, evalCtx)
	p.With, p.Stores = with, stores
	return p, append(append(diags, wDiags...), sDiags...)
}
