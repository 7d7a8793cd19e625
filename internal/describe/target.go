package describe

import (
	"github.com/specialistvlad/rendergraph/internal/rendergraph"
)

// Target is a rendergraph.Target that records a description of every render
// pass it is asked to create instead of talking to a device.
type Target struct {
	presentation *rendergraph.Attachment
	separate     bool
	passes       []RenderPassDescription
}

var _ rendergraph.Target = (*Target)(nil)

// NewTarget returns a target presenting presentation, which may be nil.
func NewTarget(presentation *rendergraph.Attachment, separateDepthStencilLayouts bool) *Target {
	return &Target{presentation: presentation, separate: separateDepthStencilLayouts}
}

func (t *Target) PresentationAttachment() *rendergraph.Attachment { return t.presentation }
func (t *Target) SupportsSeparateDepthStencilLayouts() bool       { return t.separate }

// CreateRenderPass records the description of pass.
func (t *Target) CreateRenderPass(pass *rendergraph.RenderPass) error {
	t.passes = append(t.passes, Pass(pass, t.separate))
	return nil
}

// Passes returns the descriptions in the order the passes were created.
func (t *Target) Passes() []RenderPassDescription {
	out := make([]RenderPassDescription, len(t.passes))
	copy(out, t.passes)
	return out
}
