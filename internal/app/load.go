package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/specialistvlad/rendergraph/internal/fsutil"
)

// Load discovers every graph description file under the configured paths and
// loads them, in lexical file order, through the loader registered for their
// extension. Every file that fails to load is reported.
func (a *App) Load(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graph descriptions...", "paths", a.config.GraphPaths)

	byExt := make(map[string]config.Loader)
	var exts []string
	for _, l := range a.loaders {
		for _, ext := range l.Extensions() {
			if _, ok := byExt[ext]; !ok {
				byExt[ext] = l
				exts = append(exts, ext)
			}
		}
	}
	slices.Sort(exts)

	files, err := fsutil.Collect(a.config.GraphPaths, exts...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover graph descriptions: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no graph descriptions found in %s", strings.Join(a.config.GraphPaths, ", "))
	}

	model := &config.Model{}
	var errs []error
	for _, file := range files {
		loader := byExt[strings.ToLower(filepath.Ext(file))]
		m, err := loader.Load(ctx, file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := model.Merge(m); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to load graph descriptions: %w", err)
	}

	logger.Info("Graph descriptions loaded.", "files", len(files), "graphs", len(model.Graphs))
	return model, nil
}
