package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/ref"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// placeholder expressions, so a nil check alone is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// refFromExpr turns a `from` expression into a reference. Both the traversal
// form `node.A.x` and the string form "A.x" are accepted.
func refFromExpr(ctx context.Context, expr hcl.Expression) (*ref.Ref, error) {
	logger := ctxlog.FromContext(ctx)

	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		logger.Debug("Parsing reference as traversal.", "root", traversal.RootName())
		return refFromTraversal(traversal)
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return nil, fmt.Errorf("%s: from must be a reference like node.A.x or a string like \"A.x\"", expr.Range())
	}
	logger.Debug("Parsing reference as string.", "value", val.AsString())
	return ref.Parse(val.AsString())
}

func refFromTraversal(traversal hcl.Traversal) (*ref.Ref, error) {
	rng := traversal.SourceRange()
	if traversal.RootName() != "node" || len(traversal) != 3 {
		return nil, fmt.Errorf("%s: reference must have the form node.<id>.<socket>", rng)
	}

	parts := make([]string, 0, 2)
	for _, step := range traversal[1:] {
		attr, ok := step.(hcl.TraverseAttr)
		if !ok {
			return nil, fmt.Errorf("%s: reference must use attribute access, not an index", rng)
		}
		parts = append(parts, attr.Name)
	}
	return ref.New(parts[0], parts[1])
}
