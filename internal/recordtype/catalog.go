package recordtype

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/pintype"
)

// DefaultCacheSize is the number of field lists kept by NewCatalog(0).
const DefaultCacheSize = 128

// builtinCategories maps type keywords to pin categories.
var builtinCategories = map[string]pintype.Category{
	"bool":   pintype.Bool,
	"int":    pintype.Int,
	"float":  pintype.Float,
	"number": pintype.Float,
	"string": pintype.String,
	"name":   pintype.Name,
	"text":   pintype.Text,
}

type entry struct {
	def    *config.RecordDefinition
	native bool
	goType reflect.Type
}

// Catalog is the Reflector over asset-defined and Go-native records.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]*entry
	goTypes map[reflect.Type]string
	cache   *lru.Cache[string, []Field]
}

var _ Reflector = (*Catalog)(nil)

// NewCatalog creates an empty catalog whose field-list cache holds size
// entries; size <= 0 selects DefaultCacheSize.
func NewCatalog(size int) *Catalog {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Field](size)
	if err != nil {
		// Only reachable with a non-positive size, which is ruled out above.
		panic(fmt.Sprintf("recordtype: %v", err))
	}
	return &Catalog{
		records: make(map[string]*entry),
		goTypes: make(map[reflect.Type]string),
		cache:   cache,
	}
}

// Define adds or replaces an asset-defined record.
func (c *Catalog) Define(def *config.RecordDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.records[def.Name]; ok && prev.native {
		return fmt.Errorf("record '%s' is declared natively and cannot be redefined by %s", def.Name, def.Source)
	}
	c.records[def.Name] = &entry{def: def}
	c.cache.Purge()
	return nil
}

// ReplaceDefined swaps every asset-defined record for defs, keeping native
// records. Definitions that collide with a native record are skipped and
// reported in the returned error.
func (c *Catalog) ReplaceDefined(ctx context.Context, defs map[string]*config.RecordDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, e := range c.records {
		if !e.native {
			delete(c.records, name)
		}
	}

	var errs []string
	for _, name := range sortedNames(defs) {
		def := defs[name]
		if prev, ok := c.records[name]; ok && prev.native {
			errs = append(errs, fmt.Sprintf("record '%s' is declared natively and cannot be redefined by %s", name, def.Source))
			continue
		}
		c.records[name] = &entry{def: def}
	}
	c.cache.Purge()
	ctxlog.FromContext(ctx).Debug("Record catalog refreshed.", "records", len(c.records))

	if len(errs) > 0 {
		return fmt.Errorf("record catalog refresh failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Has reports whether name is a known record.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[name]
	return ok
}

// Names returns every known record name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.records))
	for name := range c.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the record definition for name.
func (c *Catalog) Definition(name string) (*config.RecordDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.records[name]
	if !ok {
		return nil, false
	}
	return e.def, true
}

// Fields returns the ordered field list of recordType.
func (c *Catalog) Fields(ctx context.Context, recordType string) ([]Field, error) {
	if fields, ok := c.cache.Get(recordType); ok {
		return fields, nil
	}

	c.mu.RLock()
	e, ok := c.records[recordType]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, recordType)
	}

	fields := make([]Field, 0, len(e.def.Fields))
	for _, f := range e.def.Fields {
		fields = append(fields, fieldFromDefinition(f))
	}
	c.cache.Add(recordType, fields)
	ctxlog.FromContext(ctx).Debug("Reflected record fields.", "record", recordType, "fields", len(fields))
	return fields, nil
}

// Policy returns the recursion policy of recordType; unknown records continue.
func (c *Catalog) Policy(recordType string) config.RecursionPolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.records[recordType]; ok {
		return e.def.Policy
	}
	return config.PolicyContinue
}

// ResolvePinType maps a declared type to a pin type.
func (c *Catalog) ResolvePinType(t config.TypeRef) (pintype.PinType, error) {
	if t.Record {
		if !c.Has(t.Name) {
			return pintype.PinType{}, fmt.Errorf("%w: record(%s) is not defined", ErrUnsupportedType, t.Name)
		}
		return pintype.PinType{Category: pintype.Struct, SubCategoryObject: t.Name, Container: t.Container}, nil
	}
	category, ok := builtinCategories[t.Name]
	if !ok {
		return pintype.PinType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return pintype.PinType{Category: category, Container: t.Container}, nil
}

// Validate checks that every field of every record resolves to a pin type.
func (c *Catalog) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range c.Names() {
		def, _ := c.Definition(name)
		for _, f := range def.Fields {
			if _, err := c.ResolvePinType(f.Type); err != nil {
				errs = append(errs, fmt.Sprintf("record '%s', field '%s': %v", name, f.Name, err))
			}
		}
	}

	if len(errs) > 0 {
		logger.Warn("Record catalog has unresolvable fields.", "count", len(errs))
		return fmt.Errorf("record validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedNames(m map[string]*config.RecordDefinition) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
