package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/rendergraph/internal/builder"
	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/specialistvlad/rendergraph/internal/describe"
	"github.com/specialistvlad/rendergraph/internal/rendergraph"
	"github.com/specialistvlad/rendergraph/internal/report"
	"golang.org/x/sync/errgroup"
)

// Run loads every graph description, resolves the graphs concurrently and
// writes the report in load order. The returned error joins the failure of
// every graph that could not be resolved.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.Load(ctx)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(a.config.OutputFormat)
	if err != nil {
		return err
	}

	results, errs := a.resolveAll(ctx, model.Graphs)
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := report.Write(a.outW, format, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Error("Render graph resolution failed.", "failed", len(errs), "total", len(results))
		return fmt.Errorf("%d of %d render graphs failed: %w", len(errs), len(results), err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// resolveAll resolves graphs on at most WorkerCount goroutines. A failing
// graph does not cancel the others. Every graph owns its traversal state so
// they can be generated in parallel.
func (a *App) resolveAll(ctx context.Context, graphs []*config.Graph) ([]report.Result, []error) {
	results := make([]report.Result, len(graphs))
	failures := make([]error, len(graphs))

	var g errgroup.Group
	g.SetLimit(a.config.WorkerCount)
	for i, cg := range graphs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = a.resolve(ctx, cg)
			return nil
		})
	}
	// Only context errors are returned by the workers; Run checks ctx itself.
	_ = g.Wait()

	var errs []error
	for _, err := range failures {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errs
}

func (a *App) resolve(ctx context.Context, cg *config.Graph) (report.Result, error) {
	// The builder and the resolver tag their own records with the graph name.
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("source", cg.Source))
	logger := ctxlog.FromContext(ctx).With("graph", cg.Name)
	result := report.Result{Graph: cg.Name, Source: cg.Source}

	fail := func(err error) (report.Result, error) {
		logger.Warn("Render graph rejected.", "error", err)
		result.Error = err.Error()
		return result, fmt.Errorf("graph %q: %w", cg.Name, err)
	}

	b, err := builder.Build(ctx, cg)
	if err != nil {
		return fail(err)
	}

	var target *describe.Target
	var rt rendergraph.Target
	if b.HasTarget && !a.config.ValidateOnly {
		target = describe.NewTarget(b.Presentation, b.SeparateDepthStencilLayouts)
		rt = target
	}

	if err := b.Graph.Generate(ctx, rt); err != nil {
		return fail(err)
	}

	if target != nil {
		result.Passes = target.Passes()
	} else {
		// Without a target the resolver assumed combined depth/stencil layouts.
		result.ValidatedOnly = true
		result.Passes = describe.Graph(b.Graph, false)
	}
	result.Attachments = describe.Attachments(b.Graph)

	logger.Info("Render graph resolved.", "passes", len(result.Passes), "validated_only", result.ValidatedOnly)
	return result, nil
}
