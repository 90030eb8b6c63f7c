package app

import (
	"context"

	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// Watch keeps the registry in sync with the assets directory until ctx is
// done. When a status port is configured, the status server runs alongside.
// onPackage, if not nil, is called after every package (re)load or removal.
func (a *App) Watch(ctx context.Context, onPackage func(ctx context.Context, pkg string)) error {
	logger := ctxlog.FromContext(ctx)

	if onPackage != nil {
		unsubscribe := a.index.Subscribe(assetindex.Listener{OnPackageLoaded: onPackage})
		defer unsubscribe()
	}

	if a.config.StatusPort > 0 {
		if _, err := a.startStatusServer(ctx, a.config.StatusPort); err != nil {
			return err
		}
		defer func() {
			if err := a.closeStatusServer(); err != nil {
				logger.Warn("Status server did not close cleanly.", "error", err)
			}
		}()
	}

	logger.Info("Watching assets.", "path", a.config.AssetsPath)
	err := a.index.Watch(ctx, a.config.WatchDebounce)
	logger.Debug("Asset watcher stopped.")
	return err
}
