// This file contains the logic for parsing HCL type expressions (e.g., `int`,
// `list(record(Objective))`) into config.TypeRef values.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToTypeRef converts an HCL type expression into a declared field type.
// Keywords are not checked here: an unknown keyword is kept so that the
// reflector can report it as unsupported and the field is skipped.
func typeExprToTypeRef(ctx context.Context, expr hcl.Expression) (config.TypeRef, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return config.TypeRef{}, fmt.Errorf("missing type expression")
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)
		if len(v.Args) != 1 {
			return config.TypeRef{}, fmt.Errorf("type constructor %s() requires exactly one argument, got %d", v.Name, len(v.Args))
		}

		if v.Name == "record" {
			name, ok := exprIdentifier(v.Args[0])
			if !ok {
				return config.TypeRef{}, fmt.Errorf("the argument to record() must be a record name, got %T", v.Args[0])
			}
			return config.TypeRef{Name: name, Record: true}, nil
		}

		elem, err := typeExprToTypeRef(ctx, v.Args[0])
		if err != nil {
			return config.TypeRef{}, err
		}
		if elem.Container != pintype.None {
			return config.TypeRef{}, fmt.Errorf("nested containers are not supported: %s(%s)", v.Name, elem)
		}

		switch v.Name {
		case "list":
			elem.Container = pintype.Array
		case "set":
			elem.Container = pintype.Set
		case "map":
			elem.Container = pintype.Map
		default:
			return config.TypeRef{}, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		return elem, nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return config.TypeRef{}, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a keyword.", "keyword", rootName)
		return config.TypeRef{Name: rootName}, nil

	default:
		return config.TypeRef{}, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// exprIdentifier extracts a bare identifier or a literal string from expr.
func exprIdentifier(expr hcl.Expression) (string, bool) {
	switch e := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) == 1 {
			return e.Traversal.RootName(), true
		}
	case *hclsyntax.TemplateExpr:
		if len(e.Parts) == 1 {
			if lit, isLit := e.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString(), true
			}
		}
	}
	return "", false
}
