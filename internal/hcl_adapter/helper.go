package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// evalOptional evaluates an optional attribute without variables. The
// boolean is false when the attribute is absent or null.
func evalOptional(ctx context.Context, expr hcl.Expression, attrName string) (cty.Value, bool, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return cty.NullVal(cty.DynamicPseudoType), false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, fmt.Errorf("invalid value for '%s': %w", attrName, diags)
	}
	if val.IsNull() {
		return val, false, nil
	}
	return val, true, nil
}

// literalString renders a primitive value, or a tuple/list of primitives
// joined with commas, as the string form used for pin defaults.
func literalString(val cty.Value) (string, error) {
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}
	ty := val.Type()
	if ty.IsTupleType() || ty.IsListType() {
		parts := make([]string, 0, val.LengthInt())
		for _, elem := range val.AsValueSlice() {
			s, err := literalString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot use %s as a literal: %w", ty.FriendlyName(), err)
	}
	if str.IsNull() {
		return "", nil
	}
	return str.AsString(), nil
}
