package pins

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
	"github.com/zclconf/go-cty/cty"
)

// NoneName is the zero value of name pins.
const NoneName = "None"

// defaultValue picks, in order: the field's default metadata, the value read
// from sample, the zero value of the pin type.
func (s *Synthesizer) defaultValue(ctx context.Context, f recordtype.Field, pt pintype.PinType, sample *cty.Value) string {
	if f.Default != nil {
		return *f.Default
	}
	if sample != nil {
		if v, ok := s.render(ctx, pt, *sample); ok {
			return v
		}
		ctxlog.FromContext(ctx).Debug("Sample value not usable as default; using zero value.", "field", f.Name)
	}
	return s.ZeroValue(ctx, pt)
}

// ZeroValue returns the default-value text of an unset pin of type pt.
func (s *Synthesizer) ZeroValue(ctx context.Context, pt pintype.PinType) string {
	switch pt.Category {
	case pintype.Int:
		return "0"
	case pintype.Float:
		return "0.0"
	case pintype.Bool:
		return "false"
	case pintype.Name:
		return NoneName
	case pintype.Struct:
		if n, ok := s.numericComponents(ctx, pt.SubCategoryObject); ok {
			return strings.TrimSuffix(strings.Repeat("0,", n), ",")
		}
	}
	return ""
}

// numericComponents reports the field count of a record whose fields are all
// numbers, such as a vector or colour.
func (s *Synthesizer) numericComponents(ctx context.Context, record string) (int, bool) {
	fields, err := s.reflector.Fields(ctx, record)
	if err != nil || len(fields) == 0 {
		return 0, false
	}
	for _, f := range fields {
		if f.Type.Record || f.Type.Container != pintype.None {
			return 0, false
		}
		if f.Type.Name != "int" && f.Type.Name != "float" && f.Type.Name != "number" {
			return 0, false
		}
	}
	return len(fields), true
}

func (s *Synthesizer) render(ctx context.Context, pt pintype.PinType, v cty.Value) (string, bool) {
	if !v.IsWhollyKnown() || v.IsNull() {
		return "", false
	}
	ty := v.Type()

	// A sample of the wrong primitive type is unusable, not converted.
	switch {
	case ty == cty.String:
		switch pt.Category {
		case pintype.String, pintype.Text:
			return v.AsString(), true
		case pintype.Name:
			if v.AsString() == "" {
				return NoneName, true
			}
			return v.AsString(), true
		}
		return "", false
	case ty == cty.Bool:
		if pt.Category != pintype.Bool {
			return "", false
		}
		return strconv.FormatBool(v.True()), true
	case ty == cty.Number:
		if pt.Category != pintype.Int && pt.Category != pintype.Float {
			return "", false
		}
		return formatNumber(pt.Category, v.AsBigFloat()), true
	case pt.Category == pintype.Struct && (ty.IsObjectType() || ty.IsMapType()):
		return s.renderRecord(ctx, pt.SubCategoryObject, v)
	}
	return "", false
}

// renderRecord joins the numeric components of a record value in field order.
func (s *Synthesizer) renderRecord(ctx context.Context, record string, v cty.Value) (string, bool) {
	if _, ok := s.numericComponents(ctx, record); !ok {
		return "", false
	}
	fields, _ := s.reflector.Fields(ctx, record)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		fv := fieldSample(&v, f.Name)
		if fv == nil || fv.IsNull() || !fv.IsKnown() || fv.Type() != cty.Number {
			return "", false
		}
		var cat pintype.Category
		if f.Type.Name == "int" {
			cat = pintype.Int
		}
		parts = append(parts, formatNumber(cat, fv.AsBigFloat()))
	}
	return strings.Join(parts, ","), true
}

func formatNumber(cat pintype.Category, bf *big.Float) string {
	if cat == pintype.Int {
		i, _ := bf.Int(nil)
		return i.String()
	}
	f, _ := bf.Float64()
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if cat == pintype.Float && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// fieldSample extracts attribute name of an object or map sample.
func fieldSample(sample *cty.Value, name string) *cty.Value {
	if sample == nil || !sample.IsKnown() || sample.IsNull() {
		return nil
	}
	ty := sample.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(name) {
			return nil
		}
		v := sample.GetAttr(name)
		return &v
	case ty.IsMapType():
		if !sample.IsWhollyKnown() {
			return nil
		}
		v, ok := sample.AsValueMap()[name]
		if !ok {
			return nil
		}
		return &v
	}
	return nil
}

func isSequence(v cty.Value) bool {
	if !v.IsWhollyKnown() || v.IsNull() {
		return false
	}
	ty := v.Type()
	return ty.IsListType() || ty.IsTupleType() || ty.IsSetType()
}
