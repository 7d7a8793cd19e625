package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/specialistvlad/rendergraph/internal/describe"
	"github.com/specialistvlad/rendergraph/internal/report"
	"github.com/stretchr/testify/require"
)

// RequireGraph returns the result for the named graph.
func RequireGraph(t *testing.T, result *HarnessResult, graph string) report.Result {
	t.Helper()
	for _, r := range result.Results {
		if r.Graph == graph {
			return r
		}
	}
	require.Failf(t, "graph not in report", "graph %q was not reported; got %d results", graph, len(result.Results))
	return report.Result{}
}

// RequirePass returns the description of a pass of a resolved graph.
func RequirePass(t *testing.T, result *HarnessResult, graph, pass string) describe.RenderPassDescription {
	t.Helper()
	g := RequireGraph(t, result, graph)
	require.Empty(t, g.Error, "graph %q failed", graph)
	for _, p := range g.Passes {
		if p.Name == pass {
			return p
		}
	}
	require.Failf(t, "pass not in report", "graph %q has no pass %q", graph, pass)
	return describe.RenderPassDescription{}
}

// RequireAttachment returns how a pass uses an attachment. It fails the test
// when the pass does not know the attachment.
func RequireAttachment(t *testing.T, result *HarnessResult, graph, pass, attachment string) describe.AttachmentDescription {
	t.Helper()
	p := RequirePass(t, result, graph, pass)
	for _, a := range p.Attachments {
		if a.Name == attachment {
			return a
		}
	}
	require.Failf(t, "attachment not used", "pass %q of graph %q does not use %q", pass, graph, attachment)
	return describe.AttachmentDescription{}
}

// AssertUnused checks that a pass does not know an attachment.
func AssertUnused(t *testing.T, result *HarnessResult, graph, pass, attachment string) {
	t.Helper()
	p := RequirePass(t, result, graph, pass)
	for _, a := range p.Attachments {
		require.NotEqual(t, attachment, a.Name, "pass %q of graph %q unexpectedly uses %q", pass, graph, attachment)
	}
}

// AssertResolvedLoad checks the log output for the decision that pass's load
// of attachment resolved to storedBy.
func AssertResolvedLoad(t *testing.T, result *HarnessResult, graph, attachment, pass, storedBy string) {
	t.Helper()
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, "Resolved load.") &&
			strings.Contains(line, fmt.Sprintf("graph=%s ", graph)) &&
			strings.Contains(line, fmt.Sprintf("attachment=%s ", attachment)) &&
			strings.Contains(line, fmt.Sprintf("pass=%s ", pass)) &&
			strings.Contains(line, fmt.Sprintf("stored_by=%s", storedBy)) {
			return
		}
	}
	require.Failf(t, "load not resolved", "no log line resolving the load of %q by %q to %q in graph %q", attachment, pass, storedBy, graph)
}
