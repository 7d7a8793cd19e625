package config

import (
	"errors"
	"fmt"
	"strings"
)

// Model is the unified, format-agnostic representation of every graph
// described by the loaded files, in load order.
type Model struct {
	Graphs []*Graph
}

// Graph is the format-agnostic representation of one render graph.
type Graph struct {
	Name string
	// Source is the file the graph was declared in.
	Source      string
	Target      *Target
	Attachments []*Attachment
	Passes      []*Pass
	Chains      []*Chain
}

// Target describes the output the graph renders to. A nil Target means the
// graph is only validated.
type Target struct {
	// Presentation names the attachment presented to the screen, if any.
	Presentation                string
	SeparateDepthStencilLayouts bool
}

// Attachment is a declared image resource.
type Attachment struct {
	Name string
	// Kind is one of color, depth, stencil or depth_stencil. Empty means color.
	Kind string
}

// Pass is one render pass with its annotations.
type Pass struct {
	Name   string
	With   []Token
	Stores []Token
}

// Chain is an ordered list of pass names joined by edges.
type Chain struct {
	Passes []string
}

// Merge appends the graphs of other to m. Graph names must be unique across
// the merged model.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	seen := make(map[string]string, len(m.Graphs))
	for _, g := range m.Graphs {
		seen[g.Name] = g.Source
	}
	var errs []error
	for _, g := range other.Graphs {
		if src, ok := seen[g.Name]; ok {
			errs = append(errs, fmt.Errorf("graph %q declared in %s is already declared in %s", g.Name, g.Source, src))
			continue
		}
		seen[g.Name] = g.Source
		m.Graphs = append(m.Graphs, g)
	}
	return errors.Join(errs...)
}

// Op is the annotation carried by a Token.
type Op int

const (
	// OpPlain is a bare attachment name.
	OpPlain Op = iota
	// OpLoad is `+name`.
	OpLoad
	// OpClear is `~name`.
	OpClear
	// OpBar is `-name`.
	OpBar
)

func (op Op) String() string {
	switch op {
	case OpLoad:
		return "load"
	case OpClear:
		return "clear"
	case OpBar:
		return "bar"
	}
	return "plain"
}

var opPrefixes = map[byte]Op{'+': OpLoad, '~': OpClear, '-': OpBar}

// Token is one attachment reference of a `with` or `stores` list.
type Token struct {
	Op         Op
	Attachment string
}

// ParseToken parses the short annotation syntax: `+a` load, `~a` clear,
// `-a` bar and a bare `a` for the attachment itself.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Token{}, errors.New("empty attachment reference")
	}
	tok := Token{Attachment: s}
	if op, ok := opPrefixes[s[0]]; ok {
		tok.Op = op
		tok.Attachment = strings.TrimSpace(s[1:])
	}
	if tok.Attachment == "" {
		return Token{}, fmt.Errorf("attachment reference %q has no name", s)
	}
	if strings.ContainsAny(tok.Attachment[:1], "+~-") {
		return Token{}, fmt.Errorf("attachment reference %q has more than one annotation", s)
	}
	return tok, nil
}

func (t Token) String() string {
	switch t.Op {
	case OpLoad:
		return "+" + t.Attachment
	case OpClear:
		return "~" + t.Attachment
	case OpBar:
		return "-" + t.Attachment
	}
	return t.Attachment
}
