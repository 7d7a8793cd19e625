package rendergraph

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// ViewKind is the kind of image view an attachment is bound through.
type ViewKind int

const (
	ViewColor ViewKind = iota
	ViewDepth
	ViewStencil
	ViewDepthStencil
)

var viewKindNames = map[ViewKind]string{
	ViewColor:        "color",
	ViewDepth:        "depth",
	ViewStencil:      "stencil",
	ViewDepthStencil: "depth_stencil",
}

func (k ViewKind) String() string {
	if s, ok := viewKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ViewKind(%d)", int(k))
}

// ParseViewKind accepts the names produced by ViewKind.String, case-insensitively.
func ParseViewKind(s string) (ViewKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range viewKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown view kind %q: must be one of color, depth, stencil, depth_stencil", s)
}

// OptimalLayout is the layout an attachment of this kind is kept in while
// render passes use it.
func (k ViewKind) OptimalLayout(separateDepthStencil bool) Layout {
	switch k {
	case ViewDepth:
		if separateDepthStencil {
			return LayoutDepthAttachmentOptimal
		}
		return LayoutDepthStencilAttachmentOptimal
	case ViewStencil:
		if separateDepthStencil {
			return LayoutStencilAttachmentOptimal
		}
		return LayoutDepthStencilAttachmentOptimal
	case ViewDepthStencil:
		return LayoutDepthStencilAttachmentOptimal
	default:
		return LayoutColorAttachmentOptimal
	}
}

// Layout is an image layout, named after its Vulkan counterpart.
type Layout int

const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutColorAttachmentOptimal
	LayoutDepthStencilAttachmentOptimal
	LayoutDepthAttachmentOptimal
	LayoutStencilAttachmentOptimal
	LayoutPresentSrc
)

func (l Layout) String() string {
	switch l {
	case LayoutUndefined:
		return "undefined"
	case LayoutGeneral:
		return "general"
	case LayoutColorAttachmentOptimal:
		return "color_attachment_optimal"
	case LayoutDepthStencilAttachmentOptimal:
		return "depth_stencil_attachment_optimal"
	case LayoutDepthAttachmentOptimal:
		return "depth_attachment_optimal"
	case LayoutStencilAttachmentOptimal:
		return "stencil_attachment_optimal"
	case LayoutPresentSrc:
		return "present_src"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// nextAttachmentID hands out the ordinals that order attachments. Declaration
// order across all sets is preserved.
var nextAttachmentID atomic.Int64

// Attachment is an image resource read and written by render passes. It is
// compared by identity and ordered by ID.
type Attachment struct {
	id          int
	index       int
	name        string
	kind        ViewKind
	finalLayout Layout
}

func (a *Attachment) ID() int             { return a.id }
func (a *Attachment) Name() string        { return a.name }
func (a *Attachment) Kind() ViewKind      { return a.kind }
func (a *Attachment) String() string      { return a.name }
func (a *Attachment) FinalLayout() Layout { return a.finalLayout }

// Index returns the position of the attachment among the registered
// attachments of its set. The presentation attachment is not registered.
func (a *Attachment) Index() (int, bool) {
	if a.index < 0 {
		return -1, false
	}
	return a.index, true
}

// Attachments is the set of attachments declared by one output target. It
// outlives the graphs that reference its attachments.
type Attachments struct {
	all        []*Attachment
	byName     map[string]*Attachment
	registered int
}

// NewAttachments returns an empty attachment set.
func NewAttachments() *Attachments {
	return &Attachments{byName: make(map[string]*Attachment)}
}

// Declare registers a new attachment. Names must be unique within the set.
func (s *Attachments) Declare(name string, kind ViewKind) *Attachment {
	a := s.declare(name, kind)
	a.index = s.registered
	s.registered++
	return a
}

// DeclarePresentation declares the attachment that is presented to the
// screen. It has no registered index.
func (s *Attachments) DeclarePresentation(name string, kind ViewKind) *Attachment {
	a := s.declare(name, kind)
	a.index = -1
	return a
}

func (s *Attachments) declare(name string, kind ViewKind) *Attachment {
	if _, ok := s.byName[name]; ok {
		panic(fmt.Sprintf("rendergraph: attachment %q declared twice", name))
	}
	a := &Attachment{
		id:   int(nextAttachmentID.Add(1)),
		name: name,
		kind: kind,
	}
	s.all = append(s.all, a)
	s.byName[name] = a
	return a
}

// Lookup finds an attachment by name.
func (s *Attachments) Lookup(name string) (*Attachment, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// All returns the attachments in declaration order.
func (s *Attachments) All() []*Attachment {
	out := make([]*Attachment, len(s.all))
	copy(out, s.all)
	return out
}

// Registered reports how many attachments have a registered index.
func (s *Attachments) Registered() int { return s.registered }
