package integrationtests

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/rendergraph/internal/report"
	"github.com/specialistvlad/rendergraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deferredHCL = `
graph "deferred" {
  target {
    presentation                   = attachment.swapchain
    separate_depth_stencil_layouts = true
  }

  attachment "swapchain" {}
  attachment "depth" { kind = "depth" }
  attachment "albedo" {}
  attachment "normal" {}

  pass "geometry" {
    stores = [clear(attachment.depth), clear(attachment.albedo), clear(attachment.normal)]
  }
  pass "ssao" {
    with   = [bar(attachment.albedo)]
    stores = [attachment.normal]
  }
  pass "lighting" {
    with   = [load(attachment.albedo), load(attachment.normal), load(attachment.depth)]
    stores = [attachment.swapchain]
  }

  chains = [[pass.geometry, pass.ssao, pass.lighting]]
}
`

const deferredYAML = `
name: deferred
target: { presentation: swapchain, separate_depth_stencil_layouts: true }
attachments:
  - { name: swapchain }
  - { name: depth, kind: depth }
  - { name: albedo }
  - { name: normal }
passes:
  - { name: geometry, stores: ["~depth", "~albedo", "~normal"] }
  - { name: ssao, with: ["-albedo"], stores: [normal] }
  - { name: lighting, with: ["+albedo", "+normal", "+depth"], stores: [swapchain] }
chains:
  - [geometry, ssao, lighting]
`

// TestFormats_HCLAndYAMLAgree verifies that the same graph described in both
// formats resolves identically.
func TestFormats_HCLAndYAMLAgree(t *testing.T) {
	// --- Arrange & Act ---
	fromHCL := testutil.RunIntegrationTest(t, map[string]string{"deferred.hcl": deferredHCL})
	fromYAML := testutil.RunIntegrationTest(t, map[string]string{"deferred.yaml": deferredYAML})

	// --- Assert ---
	require.NoError(t, fromHCL.Err)
	require.NoError(t, fromYAML.Err)
	if diff := cmp.Diff(fromHCL.Results, fromYAML.Results, cmpopts.IgnoreFields(report.Result{}, "Source")); diff != "" {
		t.Errorf("HCL and YAML results differ (-hcl +yaml):\n%s", diff)
	}
}

// TestFormats_PreserveThroughIntermediatePass verifies that a pass between
// the store and the load of an attachment it also uses must preserve it.
func TestFormats_PreserveThroughIntermediatePass(t *testing.T) {
	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"deferred.hcl": deferredHCL})

	// --- Assert ---
	require.NoError(t, result.Err)

	ssaoDepth := testutil.RequireAttachment(t, result, "deferred", "ssao", "depth")
	assert.True(t, ssaoDepth.ImplicitLoad, "geometry cleared and stored depth")
	assert.True(t, ssaoDepth.Preserve)
	assert.Equal(t, "store", ssaoDepth.StoreOp)
	testutil.AssertResolvedLoad(t, result, "deferred", "depth", "lighting", "geometry")

	ssaoNormal := testutil.RequireAttachment(t, result, "deferred", "ssao", "normal")
	assert.True(t, ssaoNormal.ImplicitLoad)
	assert.False(t, ssaoNormal.Preserve)
	testutil.AssertResolvedLoad(t, result, "deferred", "normal", "lighting", "ssao")

	testutil.AssertUnused(t, result, "deferred", "ssao", "albedo")
	lightingAlbedo := testutil.RequireAttachment(t, result, "deferred", "lighting", "albedo")
	assert.Equal(t, "load", lightingAlbedo.LoadOp)
	assert.Equal(t, "color_attachment_optimal", lightingAlbedo.InitialLayout)
	testutil.AssertResolvedLoad(t, result, "deferred", "albedo", "lighting", "geometry")

	lightingDepth := testutil.RequireAttachment(t, result, "deferred", "lighting", "depth")
	assert.Equal(t, "depth_attachment_optimal", lightingDepth.InitialLayout)
	assert.Equal(t, "dont_care", lightingDepth.StoreOp)
}

func TestFormats_ReportEncodings(t *testing.T) {
	testCases := []struct {
		format report.Format
		want   []string
	}{
		{format: report.FormatText, want: []string{`graph "deferred" (`, "present_src", "implicit"}},
		{format: report.FormatYAML, want: []string{"graph: deferred", "load_op: clear", "final_layout: present_src"}},
		{format: report.FormatDOT, want: []string{
			"digraph deferred {",
			"geometry -> ssao;",
			"lighting -> ssao [color=blue];",
		}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			// --- Act ---
			result := testutil.RunIntegrationTest(t, map[string]string{"deferred.hcl": deferredHCL}, testutil.WithFormat(tc.format))

			// --- Assert ---
			require.NoError(t, result.Err)
			assert.Empty(t, result.Results, "only JSON reports are decoded")
			for _, want := range tc.want {
				assert.Contains(t, result.Output, want)
			}
		})
	}
}

// TestFormats_ManyGraphsConcurrently resolves many independent graphs on a
// small worker pool and checks the report keeps file order.
func TestFormats_ManyGraphsConcurrently(t *testing.T) {
	// --- Arrange ---
	files := make(map[string]string)
	var want []string
	for i := range 40 {
		name := fmt.Sprintf("g%02d", i)
		want = append(want, name)
		body := strings.ReplaceAll(deferredYAML, "name: deferred", "name: "+name)
		if i%2 == 0 {
			files[name+".yaml"] = body
		} else {
			files[name+".hcl"] = strings.ReplaceAll(deferredHCL, `graph "deferred"`, fmt.Sprintf("graph %q", name))
		}
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, testutil.WithWorkers(3))

	// --- Assert ---
	require.NoError(t, result.Err)
	var got []string
	for _, r := range result.Results {
		got = append(got, r.Graph)
		assert.Len(t, r.Passes, 3, "graph %s", r.Graph)
	}
	assert.Equal(t, want, got)
}

func TestFormats_ValidateOnly(t *testing.T) {
	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"deferred.hcl": deferredHCL}, testutil.WithValidateOnly())

	// --- Assert ---
	require.NoError(t, result.Err)
	g := testutil.RequireGraph(t, result, "deferred")
	assert.True(t, g.ValidatedOnly)
	assert.False(t, testutil.RequireAttachment(t, result, "deferred", "lighting", "swapchain").Present)
	assert.NotContains(t, result.LogOutput, "Bound presentation attachment.")
}
