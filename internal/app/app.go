package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/editor"
	"github.com/specialistvlad/missiongraph/internal/hcl_adapter"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pins"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx    context.Context
	outW   io.Writer
	logger *slog.Logger
	config *Config

	loader   config.Loader
	records  *recordtype.Catalog
	registry *registry.Registry
	index    *assetindex.Index
	kinds    *nodekind.Table
	synth    *pins.Synthesizer

	serverMu   sync.Mutex
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// wired App with its own logger and registry; assets are not read until Load.
// Modules default to the compiled-in core modules.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	records := recordtype.NewCatalog(cfg.CacheSize)
	reg := registry.New(cfg.RootKind, records)
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Load(ctx, modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	// A mismatch between native kinds and native records is a programmer
	// error, so we panic.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	reg.SetGatherDynamic(!cfg.NativeOnly)
	reg.SetForcedHiddenKinds(cfg.ForcedHidden)

	loader := hcl_adapter.NewLoader()
	index := assetindex.New(cfg.AssetsPath, cfg.Pattern, loader)
	reg.SetAssetIndex(index, index)

	a := &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		records:  records,
		registry: reg,
		index:    index,
		kinds:    nodekind.NewTable(),
		synth:    pins.New(records, cfg.MaxDepth),
	}

	// Records are refreshed before the registry hears about the same change,
	// so sessions re-resolving classes already see the new record layouts.
	index.Subscribe(assetindex.Listener{
		OnAdded:         func(ctx context.Context, _ assetindex.Asset) { a.refreshRecords(ctx) },
		OnPackageLoaded: func(ctx context.Context, _ string) { a.refreshRecords(ctx) },
		OnFilesLoaded:   a.refreshRecords,
	})
	index.Subscribe(reg.Listener())
	return a
}

// Context returns the application context carrying its logger.
func (a *App) Context() context.Context { return a.ctx }

// Config returns the validated configuration.
func (a *App) Config() *Config { return a.config }

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Records returns the record catalog.
func (a *App) Records() *recordtype.Catalog { return a.records }

// Index returns the asset index.
func (a *App) Index() *assetindex.Index { return a.index }

func (a *App) refreshRecords(ctx context.Context) {
	if err := a.records.ReplaceDefined(ctx, a.index.Records()); err != nil {
		ctxlog.FromContext(ctx).Warn("Asset records could not be applied.", "error", err)
	}
}

// Load scans the assets directory and checks the records it declares.
func (a *App) Load(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading assets.", "path", a.config.AssetsPath)

	if err := a.index.ScanAll(ctx); err != nil {
		return fmt.Errorf("failed to scan assets: %w", err)
	}
	if err := a.records.ReplaceDefined(ctx, a.index.Records()); err != nil {
		return fmt.Errorf("failed to apply asset records: %w", err)
	}
	if err := a.registry.Validate(ctx); err != nil {
		return err
	}
	logger.Info("Assets loaded.", "kinds", len(a.index.KindAssets()), "records", len(a.records.Names()))
	return nil
}

// NewSession returns an editor session bound to the app's registry. The
// caller must Close it.
func (a *App) NewSession() *editor.Session {
	return editor.New(a.registry, a.kinds, a.synth)
}

// LoadMissions reads every mission document below the assets directory.
func (a *App) LoadMissions(ctx context.Context) ([]*config.Mission, error) {
	model, err := a.loader.Load(ctx, a.config.AssetsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load missions: %w", err)
	}
	return model.Missions, nil
}
