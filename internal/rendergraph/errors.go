package rendergraph

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalClearAfterWrite       = errors.New("illegal clear after write")
	ErrIllegalBarAfterWrite         = errors.New("illegal bar of written attachment")
	ErrConflictingAnnotation        = errors.New("conflicting annotation")
	ErrRedundantLoad                = errors.New("redundant load")
	ErrAmbiguousStore               = errors.New("ambiguous store")
	ErrMissingStore                 = errors.New("missing store")
	ErrStoreHiddenByClear           = errors.New("store hidden by clear")
	ErrAmbiguousSink                = errors.New("ambiguous sink")
	ErrAmbiguousPresentationSink    = errors.New("ambiguous presentation sink")
	ErrUnusedPresentationAttachment = errors.New("unused presentation attachment")
)

// Error is a validation failure of an authored render graph. Kind is one of
// the Err* sentinels above, so callers can use errors.Is.
type Error struct {
	Kind       error
	Pass       string
	Attachment string
	Msg        string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, pass *RenderPass, a *Attachment, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Pass:       pass.name,
		Attachment: a.name,
		Msg:        fmt.Sprintf(format, args...),
	}
}

func conflictingAnnotation(p *RenderPass, a *Attachment, first, second string) error {
	return newError(ErrConflictingAnnotation, p, a,
		"render pass %q can't both %s and %s attachment %q.", p.name, first, second, a.name)
}

func barredOutput(p *RenderPass, a *Attachment) error {
	return newError(ErrIllegalBarAfterWrite, p, a,
		"output attachment %q of render pass %q is barred. Can't bar an attachment that is written.", a.name, p.name)
}

func clearOfOutput(p *RenderPass, a *Attachment) error {
	return newError(ErrIllegalClearAfterWrite, p, a,
		"render pass %q clears attachment %q and also writes it. Use Stores(Clear(%s)) to clear-then-store.", p.name, a.name, a.name)
}

func clearAfterWrite(preceding, p *RenderPass, a *Attachment) error {
	return newError(ErrIllegalClearAfterWrite, p, a,
		"render pass %q clears attachment %q that was just written by %q. That makes no sense.", p.name, a.name, preceding.name)
}

func redundantLoad(preceding, p *RenderPass, a *Attachment) error {
	return newError(ErrRedundantLoad, p, a,
		"render pass %q explicitly loads attachment %q that was just written by %q; the load is implied.", p.name, a.name, preceding.name)
}

func storeHiddenByClear(preceding, p *RenderPass, a *Attachment) error {
	return newError(ErrStoreHiddenByClear, p, a,
		"the CLEAR of attachment %q by render pass %q hides any preceding store needed by render pass %q. Did you mean %q to store %q?",
		a.name, preceding.name, p.name, preceding.name, a.name)
}

func ambiguousStore(p *RenderPass, a *Attachment, first, second *RenderPass) error {
	return newError(ErrAmbiguousStore, p, a,
		"the load of attachment %q by render pass %q is ambiguous: both %q and %q stores are visible.",
		a.name, p.name, first.name, second.name)
}

func missingStore(p *RenderPass, a *Attachment) error {
	return newError(ErrMissingStore, p, a,
		"the load of attachment %q by render pass %q has no visible stores.", a.name, p.name)
}

func ambiguousSink(a *Attachment, first, second *RenderPass) error {
	return newError(ErrAmbiguousSink, second, a,
		"attachment %q has more than one render pass (%q, %q ...) marked as sink.", a.name, first.name, second.name)
}

func ambiguousPresentationSink(a *Attachment, first, second *RenderPass) error {
	return newError(ErrAmbiguousPresentationSink, second, a,
		"presentation attachment %q is stored as sink by both %q and %q.", a.name, first.name, second.name)
}

func unusedPresentation(a *Attachment) error {
	return &Error{
		Kind:       ErrUnusedPresentationAttachment,
		Attachment: a.name,
		Msg:        fmt.Sprintf("presentation attachment %q is used in this render graph, but none of the render passes uses it as an output sink.", a.name),
	}
}
