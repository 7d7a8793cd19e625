package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/rendergraph/internal/config"
	"github.com/specialistvlad/rendergraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// newEvalContext exposes the declared names of one graph as the `attachment`
// and `pass` objects, plus the annotation functions.
func newEvalContext(attachments, passes []string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"attachment": namespace(attachments),
			"pass":       namespace(passes),
		},
		Functions: map[string]function.Function{
			"load":  annotationFunc("+", "the pass reads the prior contents of the attachment"),
			"clear": annotationFunc("~", "the pass clears the attachment; in stores, clear-then-store"),
			"bar":   annotationFunc("-", "the pass does not inherit the attachment from its predecessor"),
		},
	}
}

// namespace maps every name to itself, so `attachment.albedo` evaluates to
// "albedo" and an undeclared name is an "Unsupported attribute" diagnostic.
func namespace(names []string) cty.Value {
	if len(names) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		attrs[name] = cty.StringVal(name)
	}
	return cty.ObjectVal(attrs)
}

// annotationFunc returns a function that prefixes an attachment reference
// with the token syntax shared with the YAML format.
func annotationFunc(prefix, description string) function.Function {
	return function.New(&function.Spec{
		Description: description,
		Params: []function.Parameter{
			{Name: "attachment", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(prefix + args[0].AsString()), nil
		},
	})
}

// decodeExpr evaluates expr, converts the value to ty and stores it in
// target. It reports false when the attribute was omitted or null.
func decodeExpr(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext, ty cty.Type, target any) (bool, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() {
		return false, nil
	}

	converted, err := convert.Convert(val, ty)
	if err != nil {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   fmt.Sprintf("Cannot convert %s to %s: %s.", val.Type().FriendlyName(), ty.FriendlyName(), err),
			Subject:  expr.Range().Ptr(),
		}}
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}

	if err := gocty.FromCtyValue(converted, target); err != nil {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return true, nil
}

// decodeTokens evaluates a `with` or `stores` list into tokens.
func decodeTokens(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) ([]config.Token, hcl.Diagnostics) {
	var raw []string
	if ok, diags := decodeExpr(ctx, expr, evalCtx, cty.List(cty.String), &raw); !ok {
		return nil, diags
	}

	tokens := make([]config.Token, 0, len(raw))
	var diags hcl.Diagnostics
	for _, s := range raw {
		tok, err := config.ParseToken(s)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid attachment reference",
				Detail:   err.Error() + ".",
				Subject:  expr.Range().Ptr(),
			})
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, diags
}
