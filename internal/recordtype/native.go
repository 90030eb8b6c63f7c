package recordtype

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DefineGo registers the struct type of sample as the native record name.
//
// Exported fields with a `cty` tag become record fields in declaration order.
// The `mission` tag holds comma-separated options: display=<text>,
// default=<value>, type=<keyword>, advanced, hidden, readonly. A `tooltip`
// tag sets the tooltip. Struct-typed fields refer to records registered
// earlier; any other Go type is kept as an unsupported keyword so that the
// synthesizer skips it.
func (c *Catalog) DefineGo(name string, sample any, policy config.RecursionPolicy) error {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("native record '%s': sample must be a struct, got %T", name, sample)
	}
	if _, err := gocty.ImpliedType(reflect.Zero(t).Interface()); err != nil {
		return fmt.Errorf("native record '%s': could not imply cty type from %s: %w", name, t, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.records[name]; ok {
		if prev.native {
			return fmt.Errorf("native record '%s' already registered", name)
		}
		return fmt.Errorf("native record '%s' collides with a record loaded from %s", name, prev.def.Source)
	}

	def := &config.RecordDefinition{Name: name, Policy: policy, Source: "go:" + t.String()}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		ctyName := sf.Tag.Get("cty")
		if ctyName == "" || ctyName == "-" {
			continue
		}

		opts := parseMissionTag(sf.Tag.Get("mission"))
		ref, err := c.goTypeRef(sf.Type, opts.typeKeyword)
		if err != nil {
			return fmt.Errorf("native record '%s', field '%s': %w", name, sf.Name, err)
		}

		field := &config.FieldDefinition{
			Name:        ctyName,
			DisplayName: opts.display,
			Tooltip:     sf.Tag.Get("tooltip"),
			Type:        ref,
			Advanced:    opts.advanced,
			ShowPin:     !opts.hidden,
			Settable:    !opts.readOnly,
		}
		if opts.hasDefault {
			d := opts.defaultValue
			field.Default = &d
		}
		def.Fields = append(def.Fields, field)
	}

	c.records[name] = &entry{def: def, native: true, goType: t}
	c.goTypes[t] = name
	c.cache.Purge()
	return nil
}

// ToCty converts a value of a registered native record into a cty value
// suitable as synthesis sample data.
func (c *Catalog) ToCty(v any) (cty.Value, error) {
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("could not imply cty type from %T: %w", v, err)
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("could not convert %T to cty: %w", v, err)
	}
	return val, nil
}

// goTypeRef maps a Go field type to a declared type. Must be called with c.mu held.
func (c *Catalog) goTypeRef(t reflect.Type, keyword string) (config.TypeRef, error) {
	var ref config.TypeRef
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		ref.Container = pintype.Array
		t = t.Elem()
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return ref, fmt.Errorf("map fields need string keys, got %s", t.Key())
		}
		ref.Container = pintype.Map
		t = t.Elem()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return ref, fmt.Errorf("nested containers are not supported: %s", t)
	case reflect.Bool:
		ref.Name = "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ref.Name = "int"
	case reflect.Float32, reflect.Float64:
		ref.Name = "float"
	case reflect.String:
		ref.Name = "string"
	case reflect.Struct:
		if name, ok := c.goTypes[t]; ok {
			ref.Name = name
			ref.Record = true
		} else {
			ref.Name = "go:" + t.String()
		}
	default:
		ref.Name = "go:" + t.String()
	}

	if keyword != "" && !ref.Record {
		ref.Name = keyword
	}
	return ref, nil
}

type missionTag struct {
	display      string
	typeKeyword  string
	defaultValue string
	hasDefault   bool
	advanced     bool
	hidden       bool
	readOnly     bool
}

func parseMissionTag(tag string) missionTag {
	var opts missionTag
	if tag == "" {
		return opts
	}
	for _, part := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "display":
			opts.display = value
		case "type":
			opts.typeKeyword = value
		case "default":
			if hasValue {
				opts.defaultValue = value
				opts.hasDefault = true
			}
		case "advanced":
			opts.advanced = true
		case "hidden":
			opts.hidden = true
		case "readonly":
			opts.readOnly = true
		}
	}
	return opts
}
