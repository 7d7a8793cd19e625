package rendergraph

// LoadOp is how a render pass begins using an attachment.
type LoadOp int

const (
	LoadOpDontCare LoadOp = iota
	LoadOpLoad
	LoadOpClear
)

func (op LoadOp) String() string {
	switch op {
	case LoadOpLoad:
		return "load"
	case LoadOpClear:
		return "clear"
	}
	return "dont_care"
}

// StoreOp is how a render pass ends using an attachment.
type StoreOp int

const (
	StoreOpDontCare StoreOp = iota
	StoreOpStore
)

func (op StoreOp) String() string {
	if op == StoreOpStore {
		return "store"
	}
	return "dont_care"
}

// Node is the state of one attachment within one render pass.
type Node struct {
	attachment *Attachment
	loadOp     LoadOp
	store      bool

	// clearOnly is set by the Clear modifier, as opposed to Stores(Clear(a)).
	clearOnly    bool
	explicitLoad bool
	implicitLoad bool

	preserve bool
	sink     bool
	source   bool
	present  bool
}

func (n *Node) Attachment() *Attachment { return n.attachment }
func (n *Node) LoadOp() LoadOp          { return n.loadOp }

// StoreOp is StoreOpStore when the pass writes the attachment or has to
// preserve it for a later pass.
func (n *Node) StoreOp() StoreOp {
	if n.store || n.preserve {
		return StoreOpStore
	}
	return StoreOpDontCare
}

func (n *Node) Preserve() bool  { return n.preserve }
func (n *Node) IsSink() bool    { return n.sink }
func (n *Node) IsSource() bool  { return n.source }
func (n *Node) IsPresent() bool { return n.present }

// IsImplicitLoad reports whether the load was inherited from a predecessor
// that cleared and stored the attachment.
func (n *Node) IsImplicitLoad() bool { return n.implicitLoad }

func (n *Node) justWritten() bool { return n.store && n.loadOp == LoadOpClear }
