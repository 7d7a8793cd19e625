package hcl

import "github.com/hashicorp/hcl/v2"

// fileSchema lists the top-level blocks of a graph description file.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "graph", LabelNames: []string{"name"}},
	},
}

// graphSchema is decoded by hand so that every block keeps its DefRange for
// duplicate diagnostics.
var graphSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "chains"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "target"},
		{Type: "attachment", LabelNames: []string{"name"}},
		{Type: "pass", LabelNames: []string{"name"}},
		{Type: "chain"},
	},
}

// targetBlock is the optional `target` block of a graph.
type targetBlock struct {
	Presentation                hcl.Expression `hcl:"presentation,optional"`
	SeparateDepthStencilLayouts bool           `hcl:"separate_depth_stencil_layouts,optional"`
}

// attachmentBlock is an `attachment "<name>"` block.
type attachmentBlock struct {
	Kind string `hcl:"kind,optional"`
}

// passBlock is a `pass "<name>"` block. Both lists are evaluated once every
// attachment of the graph is known.
type passBlock struct {
	With   hcl.Expression `hcl:"with,optional"`
	Stores hcl.Expression `hcl:"stores,optional"`
}

// chainBlock is a `chain` block holding one chain of passes.
type chainBlock struct {
	Passes hcl.Expression `hcl:"passes"`
}
