// Package report renders the outcome of resolving render graphs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/rendergraph/internal/describe"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding of Write.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
)

var formats = []Format{FormatText, FormatJSON, FormatYAML, FormatDOT}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(formats))
	for i, known := range formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown output format %q: must be one of %s", s, strings.Join(names, ", "))
}

// Result is the outcome of resolving one graph description. ValidatedOnly is
// set when the graph was generated without a target, so no render passes were
// created.
type Result struct {
	Graph         string                           `json:"graph" yaml:"graph"`
	Source        string                           `json:"source" yaml:"source"`
	ValidatedOnly bool                             `json:"validated_only,omitempty" yaml:"validated_only,omitempty"`
	Passes        []describe.RenderPassDescription `json:"passes,omitempty" yaml:"passes,omitempty"`
	Attachments   []describe.AttachmentSummary     `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Error         string                           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the graph could not be resolved.
func (r Result) Failed() bool { return r.Error != "" }

// Write renders results to w in the given format.
func Write(w io.Writer, format Format, results []Result) error {
	switch format {
	case FormatText:
		return writeText(w, results)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatDOT:
		return writeDOT(w, results)
	}
	return fmt.Errorf("unknown output format %q", format)
}
