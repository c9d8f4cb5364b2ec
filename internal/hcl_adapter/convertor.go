package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var envType = cty.Map(cty.String)

// decodeEnv evaluates an `env` expression into a string map. Numbers and
// bools are converted to their string form.
func decodeEnv(ctx context.Context, expr hcl.Expression) (map[string]string, error) {
	if !isExprDefined(ctx, expr, "env") {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("env must be a known value")
	}

	converted, err := convert.Convert(val, envType)
	if err != nil {
		return nil, fmt.Errorf("env must be a map of strings: %w", err)
	}

	var env map[string]string
	if err := gocty.FromCtyValue(converted, &env); err != nil {
		return nil, fmt.Errorf("unable to decode env: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Decoded env attribute.", "count", len(env))
	return env, nil
}
