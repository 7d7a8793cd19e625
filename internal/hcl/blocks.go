package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock searches a slice of blocks for all blocks of a given name.
// It returns a diagnostic error if more than one block of that name is found.
// If no block is found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type == name {
			if found != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"" + name + "\" block",
					Detail:   "Only one \"" + name + "\" block is allowed.",
					Subject:  &block.DefRange,
				})
				continue
			}
			found = block
		}
	}

	return found, diags
}

// FindDuplicateLabels reports every block of the given type whose first label
// was already used by an earlier block of the same type.
func FindDuplicateLabels(blocks hcl.Blocks, blockType string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	seen := make(map[string]*hcl.Block)

	for _, block := range blocks {
		if block.Type != blockType || len(block.Labels) == 0 {
			continue
		}
		label := block.Labels[0]
		if prev, ok := seen[label]; ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s %q", blockType, label),
				Detail:   fmt.Sprintf("A %s named %q was already declared at %s.", blockType, label, prev.DefRange),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[label] = block
	}

	return diags
}
