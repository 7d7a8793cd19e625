// Package describe turns resolved render passes into API-neutral render pass
// descriptions, the information a Vulkan backend would put into
// VkAttachmentDescription and VkSubpassDescription.
package describe

import (
	"github.com/specialistvlad/rendergraph/internal/rendergraph"
)

// AttachmentDescription is the resolved use of one attachment by one pass.
type AttachmentDescription struct {
	Name          string `json:"name" yaml:"name"`
	Kind          string `json:"kind" yaml:"kind"`
	LoadOp        string `json:"load_op" yaml:"load_op"`
	StoreOp       string `json:"store_op" yaml:"store_op"`
	InitialLayout string `json:"initial_layout" yaml:"initial_layout"`
	FinalLayout   string `json:"final_layout" yaml:"final_layout"`
	ImplicitLoad  bool   `json:"implicit_load,omitempty" yaml:"implicit_load,omitempty"`
	Preserve      bool   `json:"preserve,omitempty" yaml:"preserve,omitempty"`
	Source        bool   `json:"source,omitempty" yaml:"source,omitempty"`
	Sink          bool   `json:"sink,omitempty" yaml:"sink,omitempty"`
	Present       bool   `json:"present,omitempty" yaml:"present,omitempty"`
}

// RenderPassDescription describes one render pass in handoff order.
type RenderPassDescription struct {
	Name        string                  `json:"name" yaml:"name"`
	Vertex      string                  `json:"vertex" yaml:"vertex"`
	Incoming    []string                `json:"incoming,omitempty" yaml:"incoming,omitempty"`
	Outgoing    []string                `json:"outgoing,omitempty" yaml:"outgoing,omitempty"`
	Attachments []AttachmentDescription `json:"attachments" yaml:"attachments"`
}

// AttachmentSummary is the state of an attachment after resolution.
type AttachmentSummary struct {
	Name        string `json:"name" yaml:"name"`
	Kind        string `json:"kind" yaml:"kind"`
	FinalLayout string `json:"final_layout" yaml:"final_layout"`
}

// Pass describes a resolved render pass.
func Pass(p *rendergraph.RenderPass, separateDepthStencil bool) RenderPassDescription {
	d := RenderPassDescription{
		Name:        p.Name(),
		Vertex:      p.Vertex().String(),
		Incoming:    names(p.Incoming()),
		Outgoing:    names(p.Outgoing()),
		Attachments: make([]AttachmentDescription, 0, len(p.Nodes())),
	}
	for _, n := range p.Nodes() {
		a := n.Attachment()
		optimal := a.Kind().OptimalLayout(separateDepthStencil)

		initial := rendergraph.LayoutUndefined
		if n.LoadOp() == rendergraph.LoadOpLoad {
			initial = optimal
		}
		final := optimal
		if n.IsSink() {
			final = p.FinalLayout(a, separateDepthStencil)
		}

		d.Attachments = append(d.Attachments, AttachmentDescription{
			Name:          a.Name(),
			Kind:          a.Kind().String(),
			LoadOp:        n.LoadOp().String(),
			StoreOp:       n.StoreOp().String(),
			InitialLayout: initial.String(),
			FinalLayout:   final.String(),
			ImplicitLoad:  n.IsImplicitLoad(),
			Preserve:      n.Preserve(),
			Source:        n.IsSource(),
			Sink:          n.IsSink(),
			Present:       n.IsPresent(),
		})
	}
	return d
}

// Graph describes every pass of a generated graph in forward traversal order.
func Graph(g *rendergraph.Graph, separateDepthStencil bool) []RenderPassDescription {
	var out []RenderPassDescription
	g.ForEachRenderPass(rendergraph.Forward, func(p *rendergraph.RenderPass, _ []*rendergraph.RenderPass) bool {
		out = append(out, Pass(p, separateDepthStencil))
		return false
	})
	return out
}

// Attachments summarizes the attachments a generated graph uses.
func Attachments(g *rendergraph.Graph) []AttachmentSummary {
	all := g.Attachments()
	out := make([]AttachmentSummary, len(all))
	for i, a := range all {
		out[i] = AttachmentSummary{
			Name:        a.Name(),
			Kind:        a.Kind().String(),
			FinalLayout: a.FinalLayout().String(),
		}
	}
	return out
}

func names(passes []*rendergraph.RenderPass) []string {
	if len(passes) == 0 {
		return nil
	}
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.Name()
	}
	return out
}
