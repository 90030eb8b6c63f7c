package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// Validate checks that the native kinds form a tree under the root kind and
// that every record they reference is known to the record catalog.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, k := range r.Natives() {
		if k.Name == r.rootKind {
			continue
		}
		if k.Parent == "" {
			errs = append(errs, fmt.Sprintf("native kind '%s': no parent kind", k.Name))
			continue
		}
		if _, ok := r.NativeKind(k.Parent); !ok && k.Parent != r.rootKind {
			errs = append(errs, fmt.Sprintf("native kind '%s': parent '%s' is not registered", k.Name, k.Parent))
			continue
		}
		if !r.descendsFromRootSafe(k) {
			errs = append(errs, fmt.Sprintf("native kind '%s': does not descend from root kind '%s'", k.Name, r.rootKind))
		}

		if k.Record == "" {
			continue
		}
		if r.records == nil || !r.records.Has(k.Record) {
			errs = append(errs, fmt.Sprintf("native kind '%s': record '%s' is not registered", k.Name, k.Record))
		}
	}

	if r.records != nil {
		if err := r.records.Validate(ctx); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		logger.Warn("Registry validation found problems.", "count", len(errs))
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (r *Registry) descendsFromRootSafe(k *NativeKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.descendsFromRoot(k)
}
