package recordtype

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/pintype"
)

var (
	// ErrUnknownRecord is returned for record names the reflector does not know.
	ErrUnknownRecord = errors.New("unknown record type")
	// ErrUnsupportedType is returned when a declared type has no pin category.
	ErrUnsupportedType = errors.New("unsupported field type")
)

// Field is the reflected descriptor of one record field.
type Field struct {
	Name         string
	FriendlyName string
	Tooltip      string
	Type         config.TypeRef
	Advanced     bool
	ShowPin      bool
	Settable     bool
	// Default is the explicit default-value metadata, if any.
	Default *string
}

// Reflector is what the pin synthesizer needs to know about record types.
type Reflector interface {
	Fields(ctx context.Context, recordType string) ([]Field, error)
	Policy(recordType string) config.RecursionPolicy
	ResolvePinType(t config.TypeRef) (pintype.PinType, error)
}

func fieldFromDefinition(f *config.FieldDefinition) Field {
	friendly := f.DisplayName
	if friendly == "" {
		friendly = DisplayName(f.Name, !f.Type.Record && f.Type.Name == "bool")
	}
	return Field{
		Name:         f.Name,
		FriendlyName: friendly,
		Tooltip:      f.Tooltip,
		Type:         f.Type,
		Advanced:     f.Advanced,
		ShowPin:      f.ShowPin,
		Settable:     f.Settable,
		Default:      f.Default,
	}
}

// DisplayName turns a field name such as "max_speed", "maxSpeed" or
// "bIsActive" (for bools) into "Max Speed" / "Is Active".
func DisplayName(name string, isBool bool) string {
	if isBool && len(name) > 1 && name[0] == 'b' && unicode.IsUpper(rune(name[1])) {
		name = name[1:]
	}

	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		case unicode.IsDigit(r) && len(cur) > 0 && !unicode.IsDigit(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()

	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
