package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// Load registers every module and invalidates the class tree.
func (r *Registry) Load(ctx context.Context, modules ...Module) {
	logger := ctxlog.FromContext(ctx)
	for _, m := range modules {
		logger.Debug("Registering module.", "module", fmt.Sprintf("%T", m))
		m.Register(r)
	}
	r.InvalidateCache(ctx)
	logger.Info("Registry loaded natives.", "native_kinds", len(r.Natives()), "modules", len(modules))
}
