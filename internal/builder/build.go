package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/specialistvlad/rendergraph/internal/dag"
	"github.com/specialistvlad/rendergraph/internal/rendergraph"
)

// Build constructs an unresolved render graph from a config graph.
func Build(ctx context.Context, cfg *config.Graph) (*Built, error) {
	logger := ctxlog.FromContext(ctx).With("graph", cfg.Name)
	logger.Debug("Build: Starting graph construction.", "source", cfg.Source)

	b := &Built{
		Name:        cfg.Name,
		Source:      cfg.Source,
		Graph:       rendergraph.New(cfg.Name),
		Attachments: rendergraph.NewAttachments(),
		HasTarget:   cfg.Target != nil,
		passes:      make(map[string]*rendergraph.RenderPass),
	}
	if cfg.Target != nil {
		b.SeparateDepthStencilLayouts = cfg.Target.SeparateDepthStencilLayouts
	}

	var errs []error
	errs = append(errs, declareAttachments(cfg, b)...)
	logger.Debug("Build: Attachment declaration complete.", "attachment_count", len(b.Attachments.All()))

	errs = append(errs, createPasses(cfg, b)...)
	logger.Debug("Build: Pass creation complete.", "pass_count", len(b.passes))

	errs = append(errs, annotatePasses(cfg, b)...)

	if len(errs) == 0 {
		errs = append(errs, linkChains(ctx, cfg, b)...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w %q (%s): %w", ErrInvalidGraph, cfg.Name, cfg.Source, errors.Join(errs...))
	}

	logger.Debug("Build: Graph construction successful.")
	return b, nil
}

func declareAttachments(cfg *config.Graph, b *Built) []error {
	var errs []error
	presentation := ""
	if cfg.Target != nil {
		presentation = cfg.Target.Presentation
	}

	for _, a := range cfg.Attachments {
		if a.Name == "" {
			errs = append(errs, errors.New("attachment with an empty name"))
			continue
		}
		if _, dup := b.Attachments.Lookup(a.Name); dup {
			errs = append(errs, fmt.Errorf("attachment %q is declared more than once", a.Name))
			continue
		}
		kind := rendergraph.ViewColor
		if a.Kind != "" {
			var err error
			if kind, err = rendergraph.ParseViewKind(a.Kind); err != nil {
				errs = append(errs, fmt.Errorf("attachment %q: %w", a.Name, err))
				continue
			}
		}
		if a.Name == presentation {
			b.Presentation = b.Attachments.DeclarePresentation(a.Name, kind)
			continue
		}
		b.Attachments.Declare(a.Name, kind)
	}

	if presentation != "" && b.Presentation == nil {
		if _, declared := b.Attachments.Lookup(presentation); !declared {
			errs = append(errs, fmt.Errorf("presentation attachment %q is not declared", presentation))
		}
	}
	return errs
}

func createPasses(cfg *config.Graph, b *Built) []error {
	var errs []error
	for _, p := range cfg.Passes {
		if p.Name == "" {
			errs = append(errs, errors.New("pass with an empty name"))
			continue
		}
		if _, dup := b.passes[p.Name]; dup {
			errs = append(errs, fmt.Errorf("pass %q is declared more than once", p.Name))
			continue
		}
		b.passes[p.Name] = b.Graph.NewPass(p.Name)
	}
	return errs
}

func annotatePasses(cfg *config.Graph, b *Built) []error {
	var errs []error
	for _, p := range cfg.Passes {
		pass, ok := b.passes[p.Name]
		if !ok {
			continue
		}

		var with []rendergraph.Annotation
		for _, tok := range p.With {
			a, err := b.lookup(p.Name, tok)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			switch tok.Op {
			case config.OpLoad:
				with = append(with, rendergraph.Load(a))
			case config.OpClear:
				with = append(with, rendergraph.Clear(a))
			case config.OpBar:
				with = append(with, rendergraph.Bar(a))
			default:
				errs = append(errs, fmt.Errorf("pass %q: with %q needs an annotation: load (+), clear (~) or bar (-)", p.Name, tok.Attachment))
			}
		}

		var stores []rendergraph.Output
		for _, tok := range p.Stores {
			a, err := b.lookup(p.Name, tok)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			// Load and Bar are passed through so that the resolver reports
			// them with its own error kinds.
			switch tok.Op {
			case config.OpClear:
				stores = append(stores, rendergraph.Clear(a))
			case config.OpLoad:
				stores = append(stores, rendergraph.Load(a))
			case config.OpBar:
				stores = append(stores, rendergraph.Bar(a))
			default:
				stores = append(stores, a)
			}
		}

		pass.With(with...).Stores(stores...)
	}
	return errs
}

func (b *Built) lookup(pass string, tok config.Token) (*rendergraph.Attachment, error) {
	a, ok := b.Attachments.Lookup(tok.Attachment)
	if !ok {
		return nil, fmt.Errorf("pass %q references undeclared attachment %q", pass, tok.Attachment)
	}
	return a, nil
}

// linkChains validates the chains against a dag.Graph before adding them to
// the render graph.
func linkChains(ctx context.Context, cfg *config.Graph, b *Built) []error {
	logger := ctxlog.FromContext(ctx).With("graph", cfg.Name)

	topology := dag.New()
	for _, p := range cfg.Passes {
		topology.AddNode(p.Name)
	}

	var errs []error
	chains := make([][]*rendergraph.RenderPass, 0, len(cfg.Chains))
	// Passes of single-pass chains have no edges in topology.
	solo := make(map[string]bool)
	for i, c := range cfg.Chains {
		if len(c.Passes) == 0 {
			errs = append(errs, fmt.Errorf("chain %d is empty", i+1))
			continue
		}
		passes := make([]*rendergraph.RenderPass, 0, len(c.Passes))
		prev := ""
		for _, name := range c.Passes {
			p, ok := b.passes[name]
			if !ok {
				errs = append(errs, fmt.Errorf("chain %d references undeclared pass %q", i+1, name))
				prev = ""
				continue
			}
			if prev != "" {
				if err := topology.AddEdge(prev, name); err != nil {
					errs = append(errs, fmt.Errorf("chain %d: %w", i+1, err))
				}
			}
			passes = append(passes, p)
			prev = name
		}
		if len(c.Passes) == 1 {
			solo[c.Passes[0]] = true
		}
		chains = append(chains, passes)
	}
	if len(errs) > 0 {
		return errs
	}

	if err := topology.DetectCycles(); err != nil {
		return []error{fmt.Errorf("error validating chains: %w", err)}
	}
	logger.Debug("Build: Cycle detection passed.", "chain_count", len(chains), "pass_count", topology.Len())

	for _, passes := range chains {
		if err := b.Graph.Chain(passes...); err != nil {
			logger.Debug("Build: Chain carries annotation errors; Generate reports them.", "error", err)
		}
	}
	for _, p := range cfg.Passes {
		if !solo[p.Name] && isolated(topology, p.Name) {
			logger.Warn("Build: Pass is not part of any chain and is ignored.", "pass", p.Name)
		}
	}
	return nil
}

// isolated reports whether id has no edges in topology.
func isolated(topology *dag.Graph, id string) bool {
	deps, err := topology.Dependencies(id)
	if err != nil {
		return false
	}
	dependents, err := topology.Dependents(id)
	if err != nil {
		return false
	}
	return len(deps) == 0 && len(dependents) == 0
}
