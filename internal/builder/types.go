package builder

import (
	"errors"

	"github.com/specialistvlad/rendergraph/internal/rendergraph"
)

// ErrInvalidGraph wraps every structural problem of a graph description.
var ErrInvalidGraph = errors.New("invalid graph description")

// Built is a render graph ready to be generated.
type Built struct {
	Name   string
	Source string

	Graph       *rendergraph.Graph
	Attachments *rendergraph.Attachments

	// HasTarget is false for graphs without a target block; those are only
	// validated.
	HasTarget bool
	// Presentation is nil when the target presents nothing.
	Presentation                *rendergraph.Attachment
	SeparateDepthStencilLayouts bool

	passes map[string]*rendergraph.RenderPass
}

// Pass returns the render pass declared under name.
func (b *Built) Pass(name string) (*rendergraph.RenderPass, bool) {
	p, ok := b.passes[name]
	return p, ok
}

// Attachment returns the attachment declared under name.
func (b *Built) Attachment(name string) (*rendergraph.Attachment, bool) {
	return b.Attachments.Lookup(name)
}
