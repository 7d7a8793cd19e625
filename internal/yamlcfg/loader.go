package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/specialistvlad/rendergraph/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// graphDoc is one YAML document.
type graphDoc struct {
	Name        string          `yaml:"name"`
	Target      *targetDoc      `yaml:"target"`
	Attachments []attachmentDoc `yaml:"attachments"`
	Passes      []passDoc       `yaml:"passes"`
	Chains      [][]string      `yaml:"chains"`
}

// empty reports whether the document had no content, as with a trailing
// "---" or a comment-only document.
func (d *graphDoc) empty() bool {
	return d.Name == "" && d.Target == nil && len(d.Attachments) == 0 && len(d.Passes) == 0 && len(d.Chains) == 0
}

type targetDoc struct {
	Presentation                string `yaml:"presentation"`
	SeparateDepthStencilLayouts bool   `yaml:"separate_depth_stencil_layouts"`
}

type attachmentDoc struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type passDoc struct {
	Name   string   `yaml:"name"`
	With   []string `yaml:"with"`
	Stores []string `yaml:"stores"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".yaml", ".yml"} }

// Load reads every YAML file among paths and returns the graphs they
// describe in file and document order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read graph file: %w", err)
		}
		graphs, err := Parse(data, file)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(&config.Model{Graphs: graphs}); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML loading complete.", "files", len(files), "graphs", len(model.Graphs))
	return model, nil
}

// Parse decodes every document of data. source names the file in errors
// and in config.Graph.Source.
func Parse(data []byte, source string) ([]*config.Graph, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var graphs []*config.Graph
	for i := 0; ; i++ {
		var doc graphDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return graphs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse graph yaml %s (document %d): %w", source, i+1, err)
		}
		if doc.empty() {
			continue
		}
		g, err := translate(&doc, source)
		if err != nil {
			return nil, fmt.Errorf("%s (document %d): %w", source, i+1, err)
		}
		graphs = append(graphs, g)
	}
}

func translate(doc *graphDoc, source string) (*config.Graph, error) {
	if doc.Name == "" {
		return nil, errors.New("graph has no name")
	}

	g := &config.Graph{Name: doc.Name, Source: source}
	if doc.Target != nil {
		g.Target = &config.Target{
			Presentation:                doc.Target.Presentation,
			SeparateDepthStencilLayouts: doc.Target.SeparateDepthStencilLayouts,
		}
	}
	for _, a := range doc.Attachments {
		g.Attachments = append(g.Attachments, &config.Attachment{Name: a.Name, Kind: a.Kind})
	}

	var errs []error
	for _, p := range doc.Passes {
		with, err := parseTokens(p.With)
		if err != nil {
			errs = append(errs, fmt.Errorf("pass %q: with: %w", p.Name, err))
		}
		stores, err := parseTokens(p.Stores)
		if err != nil {
			errs = append(errs, fmt.Errorf("pass %q: stores: %w", p.Name, err))
		}
		g.Passes = append(g.Passes, &config.Pass{Name: p.Name, With: with, Stores: stores})
	}
	for _, c := range doc.Chains {
		g.Chains = append(g.Chains, &config.Chain{Passes: c})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("graph %q: %w", doc.Name, err)
	}
	return g, nil
}

func parseTokens(raw []string) ([]config.Token, error) {
	if raw == nil {
		return nil, nil
	}
	tokens := make([]config.Token, 0, len(raw))
	var errs []error
	for _, s := range raw {
		tok, err := config.ParseToken(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, errors.Join(errs...)
}
