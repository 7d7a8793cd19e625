package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/specialistvlad/rendergraph/internal/describe"
)

func writeText(w io.Writer, results []Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeTextResult(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeTextResult(w io.Writer, r Result) error {
	status := "ok"
	switch {
	case r.Failed():
		status = "FAILED"
	case r.ValidatedOnly:
		status = "valid"
	}
	if _, err := fmt.Fprintf(w, "graph %q (%s): %s\n", r.Graph, r.Source, status); err != nil {
		return err
	}
	if r.Failed() {
		for _, line := range strings.Split(r.Error, "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
		return nil
	}

	if len(r.Passes) > 0 {
		passes := table.NewWriter()
		passes.AppendHeader(table.Row{"Pass", "Vertex", "Attachment", "Load", "Store", "Initial", "Final", "Flags"})
		for _, p := range r.Passes {
			if len(p.Attachments) == 0 {
				passes.AppendRow(table.Row{p.Name, p.Vertex, "", "", "", "", "", ""})
			}
			for _, a := range p.Attachments {
				passes.AppendRow(table.Row{p.Name, p.Vertex, a.Name, a.LoadOp, a.StoreOp, a.InitialLayout, a.FinalLayout, flags(a)})
			}
		}
		passes.SetAutoIndex(false)
		passes.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
		if _, err := fmt.Fprintln(w, passes.Render()); err != nil {
			return err
		}
	}

	if len(r.Attachments) > 0 {
		attachments := table.NewWriter()
		attachments.AppendHeader(table.Row{"Attachment", "Kind", "Final layout"})
		for _, a := range r.Attachments {
			attachments.AppendRow(table.Row{a.Name, a.Kind, a.FinalLayout})
		}
		if _, err := fmt.Fprintln(w, attachments.Render()); err != nil {
			return err
		}
	}
	return nil
}

func flags(a describe.AttachmentDescription) string {
	var out []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{a.ImplicitLoad, "implicit"},
		{a.Preserve, "preserve"},
		{a.Source, "source"},
		{a.Sink, "sink"},
		{a.Present, "present"},
	} {
		if f.set {
			out = append(out, f.name)
		}
	}
	return strings.Join(out, ",")
}
